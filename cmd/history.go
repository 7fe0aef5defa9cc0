package cmd

import (
	"context"
	"fmt"
)

// History prints the newest access history entries
func History(ctx context.Context, env *Env, limit int) {
	nb := OpenNotebook(env)
	defer nb.Close()

	entries, err := nb.History(ctx, limit)
	if err != nil {
		HandleError(err)
	}

	if len(entries) == 0 {
		fmt.Println("No history")
		return
	}

	for _, e := range entries {
		id := e.NoteID
		if id == "" {
			id = "-"
		}
		fmt.Printf("%s  %-8s %s\n", e.Date.Format("2006-01-02 15:04:05"), e.Action, id)
	}
}
