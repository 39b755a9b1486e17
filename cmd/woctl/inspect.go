package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

func statesCmd() *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "states",
		Short: "List work order statuses with labels and colours",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := workflow.ParseLocale(locale)
			type row struct {
				Status   domain.WorkOrderStatus `json:"status"`
				Label    string                 `json:"label"`
				Color    string                 `json:"color"`
				Terminal bool                   `json:"terminal"`
			}
			items := make([]row, 0, len(domain.AllStatuses))
			rows := make([][]any, 0, len(domain.AllStatuses))
			for _, s := range domain.AllStatuses {
				r := row{Status: s, Label: workflow.DisplayName(s, loc), Color: workflow.Color(s), Terminal: s.Terminal()}
				items = append(items, r)
				rows = append(rows, []any{r.Status, r.Label, r.Color, r.Terminal})
			}
			return render(items, []string{"Status", "Label", "Color", "Terminal"}, rows)
		},
	}
	cmd.Flags().StringVar(&locale, "locale", string(workflow.DefaultLocale), "display locale (en, ar)")
	return cmd
}

func edgesCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "edges",
		Short: "Print the transition table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter domain.WorkOrderStatus
			if from != "" {
				s, err := domain.ParseStatus(from)
				if err != nil {
					return err
				}
				filter = s
			}
			edges := make([]workflow.Edge, 0)
			rows := make([][]any, 0)
			for _, e := range workflow.Edges() {
				if filter != "" && e.From != filter {
					continue
				}
				edges = append(edges, e)
				rows = append(rows, []any{e.From, e.To, e.Action, describeEdge(e)})
			}
			return render(edges, []string{"From", "To", "Action", "Allowed"}, rows)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "only edges leaving this status")
	return cmd
}

func describeEdge(e workflow.Edge) string {
	parts := make([]string, 0, len(e.Roles)+2)
	for _, r := range e.Roles {
		parts = append(parts, r.String())
	}
	if e.Team {
		parts = append(parts, "assigned team")
	}
	if e.Reporter {
		parts = append(parts, "reporter")
	}
	return strings.Join(parts, ", ")
}

func checkCmd() *cobra.Command {
	var (
		from, to, team string
		roles, teams   []string
		reporter, bare bool
		allowFastTrack bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a transition offline",
		Long: `check runs the transition guard for a hypothetical work order. Unless --bare is
set, every prior-stage stamp is treated as present so only the edge and role
rules decide.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromStatus, err := domain.ParseStatus(from)
			if err != nil {
				return err
			}
			toStatus, err := domain.ParseStatus(to)
			if err != nil {
				return err
			}
			roleSet, unknown := domain.ParseRoleSet(roles)
			if len(unknown) > 0 {
				return fmt.Errorf("unknown roles: %s", strings.Join(unknown, ", "))
			}
			actor := domain.Actor{UserID: "woctl", Roles: roleSet, TeamIDs: teams, IsReporter: reporter}
			wo := hypotheticalWorkOrder(fromStatus, team, bare)

			engine := workflow.New(workflow.Policy{AllowAdminFastTrack: allowFastTrack})
			res := engine.CanTransition(fromStatus, toStatus, actor, &wo)
			out := struct {
				From      domain.WorkOrderStatus `json:"from"`
				To        domain.WorkOrderStatus `json:"to"`
				Valid     bool                   `json:"valid"`
				Reason    workflow.Reason        `json:"reason,omitempty"`
				Message   string                 `json:"message,omitempty"`
				FastTrack bool                   `json:"fast_track,omitempty"`
			}{fromStatus, toStatus, res.Valid, res.Reason, res.Message, res.FastTrack}
			return render(out, []string{"From", "To", "Valid", "Reason", "Message"},
				[][]any{{out.From, out.To, out.Valid, out.Reason, out.Message}})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "current status")
	cmd.Flags().StringVar(&to, "to", "", "target status")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "actor roles (comma separated)")
	cmd.Flags().StringSliceVar(&teams, "teams", nil, "actor team ids (comma separated)")
	cmd.Flags().StringVar(&team, "team", "", "team the work order is assigned to")
	cmd.Flags().BoolVar(&reporter, "reporter", false, "actor is the original reporter")
	cmd.Flags().BoolVar(&bare, "bare", false, "leave prior-stage stamps unset")
	cmd.Flags().BoolVar(&allowFastTrack, "fast-track", false, "allow admin fast-track")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func hypotheticalWorkOrder(status domain.WorkOrderStatus, team string, bare bool) domain.WorkOrder {
	now := time.Now().UTC()
	wo := domain.WorkOrder{Status: status, ReportedBy: "reporter", ReportedAt: now}
	if team != "" {
		wo.AssignedTeam = &team
	}
	if bare {
		return wo
	}
	stamp := func() *time.Time { t := now; return &t }
	wo.TechnicianCompletedAt = stamp()
	wo.SupervisorApprovedAt = stamp()
	wo.EngineerApprovedAt = stamp()
	wo.CustomerReviewedAt = stamp()
	if status == domain.StatusPendingReporterClosure {
		wo.PendingClosureSince = stamp()
	}
	return wo
}

func render(v any, header []string, rows [][]any) error {
	if viper.GetBool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	hdr := make(table.Row, 0, len(header))
	for _, h := range header {
		hdr = append(hdr, h)
	}
	tw.AppendHeader(hdr)
	for _, r := range rows {
		tw.AppendRow(table.Row(r))
	}
	tw.Render()
	return nil
}
