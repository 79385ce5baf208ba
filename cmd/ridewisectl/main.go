// Command ridewisectl inspects and maintains a RideWise data store from the
// shell, using the same configuration as the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sm8ta/ridewise/internal/adapter/handler/http"
	"github.com/sm8ta/ridewise/internal/app"
	"github.com/sm8ta/ridewise/internal/config"
	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/query"
)

const usage = `usage: ridewisectl [-v] <command> [flags]

commands:
  stats      [-type ID]                      fleet and per-bike totals
  bikes      [-type ID]                      list bikes
  services   [-bike ID] [-type ID] [-q TEXT] [-sort MODE]
                                             list service entries
  export     [-o FILE]                       write the document as JSON
  import     FILE                            replace the document with FILE
  reset                                      replace the document with sample data
  backup                                     upload the document to object storage
  backups                                    list stored backups
  restore    [KEY]                           import a backup, newest by default
  token      -sub NAME [-role owner|viewer]  sign an API token
`

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ridewisectl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("ridewisectl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	verbose := global.Bool("v", false, "log at info level")
	if err := global.Parse(args); err != nil {
		return errors.New(usage)
	}
	if global.NArg() == 0 {
		return errors.New(usage)
	}
	command, rest := global.Arg(0), global.Args()[1:]

	cfg, err := config.New()
	if err != nil {
		return err
	}
	cfg.Log.Output = "stderr"
	if !*verbose {
		cfg.Log.Level = "error"
	}

	if command == "token" {
		return runToken(cfg, rest, out)
	}

	a, err := app.NewCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Store.Degraded() {
		fmt.Fprintln(out, subtleStyle.Render("warning: storage unavailable, changes will not be saved"))
	}

	switch command {
	case "stats":
		return runStats(ctx, a, rest, out)
	case "bikes":
		return runBikes(ctx, a, rest, out)
	case "services":
		return runServices(ctx, a, rest, out)
	case "export":
		return runExport(ctx, a, rest, out)
	case "import":
		return runImport(ctx, a, rest, out)
	case "reset":
		doc, err := a.Services.Data.Reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "reset: %d bikes, %d services\n", len(doc.Bikes), len(doc.Services))
		return nil
	case "backup":
		key, err := a.Services.Data.Backup(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, key)
		return nil
	case "backups":
		keys, err := a.Services.Data.ListBackups(ctx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(out, key)
		}
		return nil
	case "restore":
		key := ""
		if len(rest) > 0 {
			key = rest[0]
		}
		doc, err := a.Services.Data.Restore(ctx, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "restored: %d bikes, %d services\n", len(doc.Bikes), len(doc.Services))
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
}

func runStats(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	typeID := fs.String("type", "", "only bikes with this service type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dash := a.Services.Stats.Dashboard(ctx, *typeID)
	currency := dash.Preferences.Currency

	fmt.Fprintln(out, titleStyle.Render("Garage"))
	fmt.Fprintf(out, "%d bikes, %d services, %s spent, last service %s\n\n",
		dash.Fleet.BikeCount, dash.Fleet.ServiceCount,
		money(dash.Fleet.TotalCost, currency), orDash(dash.Fleet.LastServiceDate))

	t := newTable("Bike", "Entries", "Spent", "Last service", "Last odometer")
	for _, s := range dash.Bikes {
		t.Row(
			s.Bike.DisplayName(),
			strconv.Itoa(s.Stats.EntryCount),
			money(s.Stats.TotalCost, currency),
			orDash(s.Stats.LastServiceDate),
			distance(s.Stats.LastOdometer, dash.Preferences.Distance),
		)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runBikes(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("bikes", flag.ContinueOnError)
	typeID := fs.String("type", "", "only bikes with this service type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := newTable("ID", "Name", "Make", "Model", "Year", "VIN")
	for _, b := range a.Services.Bikes.ListBikes(ctx, *typeID) {
		t.Row(b.ID, b.DisplayName(), b.Make, b.Model, strconv.Itoa(b.Year), orDash(b.VIN))
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runServices(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("services", flag.ContinueOnError)
	bikeID := fs.String("bike", "", "bike id")
	typeID := fs.String("type", "", "service type id")
	text := fs.String("q", "", "text in vendor or notes")
	sortMode := fs.String("sort", string(query.SortDateDesc), "date-desc, date-asc, odo-desc or odo-asc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prefs := a.Services.Preferences.GetPreferences(ctx)
	entries := a.Services.ServiceLog.ListServices(ctx, query.Filter{
		BikeID:        *bikeID,
		ServiceTypeID: *typeID,
		Query:         *text,
	}, query.ParseSortMode(*sortMode))

	t := newTable("Date", "Bike", "Service", "Odometer", "Cost", "Vendor")
	for _, e := range entries {
		label := e.TypeLabel
		if label == "" {
			label = e.ServiceTypeID
		}
		var cost float64
		if e.Cost != nil {
			cost = *e.Cost
		}
		t.Row(e.Date, e.BikeID, label, distance(e.Odometer, prefs.Distance), money(cost, prefs.Currency), orDash(e.Vendor))
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runExport(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := fs.String("o", "", "output file, stdout when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.Services.Data.Export(ctx)
	if err != nil {
		return err
	}
	if *path == "" {
		_, err := io.WriteString(out, data+"\n")
		return err
	}
	return os.WriteFile(*path, []byte(data), 0o644)
}

func runImport(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("import needs exactly one FILE")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	doc, err := a.Services.Data.Import(ctx, string(data))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported: %d bikes, %d services\n", len(doc.Bikes), len(doc.Services))
	return nil
}

func runToken(cfg *config.Container, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("sub", "", "token subject")
	role := fs.String("role", string(domain.Owner), "owner or viewer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Token.Secret == "" {
		return errors.New("TOKEN_SECRET is not set")
	}
	if *subject == "" {
		return errors.New("token needs -sub")
	}
	r := domain.UserRole(strings.ToLower(*role))
	if r != domain.Owner && r != domain.Viewer {
		return fmt.Errorf("unknown role %q", *role)
	}

	signed, err := http.NewJWTTokenService(cfg.Token.Secret, nil).IssueToken(*subject, r)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, signed)
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func money(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}

func distance(value *float64, unit domain.DistanceUnit) string {
	if value == nil {
		return "-"
	}
	suffix := "mi"
	if unit == domain.Kilometers {
		suffix = "km"
	}
	return fmt.Sprintf("%s %s", strconv.FormatFloat(*value, 'f', -1, 64), suffix)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
