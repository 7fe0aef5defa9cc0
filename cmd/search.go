package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
)

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ")

// Search finds notes whose title, tags or content contain query. With full
// every match is printed with its position and surrounding text.
func Search(ctx context.Context, env *Env, query string, full bool) {
	nb, password, source := UnlockNotebook(ctx, env, "Enter password: ")
	defer nb.Close()
	defer crypto.ClearBytes(password)

	report, err := nb.Search(ctx, password, query)
	if err != nil {
		HandleError(err)
	}

	if len(report.Results) == 0 {
		fmt.Println("No matches")
	}
	for _, result := range report.Results {
		note := result.Note
		fmt.Printf("  %s  %s  (%d matches)\n", note.ID[:min(8, len(note.ID))], note.Title, len(result.Matches))
		if !full {
			continue
		}
		for _, m := range result.Matches {
			if m.Field == core.FieldContent {
				fmt.Printf("      content %d-%d: ...%s...\n", m.Start, m.End, flatten.Replace(m.Text))
			} else {
				fmt.Printf("      %s %d-%d: %s\n", m.Field, m.Start, m.End, m.Text)
			}
		}
	}

	for _, id := range report.Stale {
		fmt.Printf("  stale: %s (content not searched, needs 'locknote recover')\n", id)
	}
	for _, id := range report.Unreadable {
		fmt.Printf("  unreadable: %s\n", id)
	}

	if source == SourcePrompt {
		vaultID, _ := nb.GetVaultID(ctx)
		OfferToSavePassword(vaultID, password)
	}
}
