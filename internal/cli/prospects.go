package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acmeliving/sophie-go/internal/service"
)

var prospectsCmd = &cobra.Command{
	Use:   "prospects [prospect-id]",
	Short: "List prospects or show one in detail",
	Long: `Prospects shows everyone the assistant has talked to. Without
arguments it prints a table of all prospects; with an ID it prints that
prospect's sessions and extracted enrichment events.

Examples:
  sophie prospects
  sophie prospects 8c7d6e5f`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProspects,
}

func runProspects(cmd *cobra.Command, args []string) error {
	svc := service.NewProspectService(dbClient)
	ctx := context.Background()

	if len(args) == 1 {
		return printProspectDetail(ctx, svc, args[0])
	}
	return printProspectList(ctx, svc)
}

func printProspectList(ctx context.Context, svc *service.ProspectService) error {
	prospects, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("list prospects: %w", err)
	}

	if len(prospects) == 0 {
		fmt.Println("No prospects yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tTOUR\tSESSIONS")
	for _, p := range prospects {
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		if name == "" {
			name = "-"
		}
		tour := "-"
		if p.TourScheduled {
			tour = "scheduled"
			if p.TourDatetime != nil {
				tour = p.TourDatetime.Format("Mon Jan 2 3:04 PM")
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			p.ProspectID, name, orDash(p.Email), orDash(p.Phone), tour, p.TotalSessions)
	}
	return w.Flush()
}

func printProspectDetail(ctx context.Context, svc *service.ProspectService, id string) error {
	detail, err := svc.Detail(ctx, id)
	if err != nil {
		return fmt.Errorf("get prospect: %w", err)
	}

	p := detail.Prospect
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		name = "(name not collected)"
	}
	fmt.Printf("Prospect %s\n", p.ProspectID)
	fmt.Printf("  Name:  %s\n", name)
	fmt.Printf("  Email: %s\n", orDash(p.Email))
	fmt.Printf("  Phone: %s\n", orDash(p.Phone))
	if p.TourScheduled {
		if p.TourDatetime != nil {
			fmt.Printf("  Tour:  %s\n", p.TourDatetime.Format("Monday, January 2 at 3:04 PM"))
		} else {
			fmt.Println("  Tour:  scheduled")
		}
	}

	fmt.Printf("\nSessions (%d):\n", len(detail.Sessions))
	for _, sess := range detail.Sessions {
		fmt.Printf("  %s  %d turns  last active %s\n",
			sess.SessionID, len(sess.History), sess.LastInteraction.Format("2006-01-02 15:04"))
	}

	fmt.Printf("\nEnrichment events (%d):\n", len(detail.Events))
	for _, ev := range detail.Events {
		fmt.Printf("  [%s] %s (%.2f) %q\n",
			ev.CreatedAt.Format("01-02 15:04"), ev.EventType, ev.Confidence, ev.SourceMessage)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
