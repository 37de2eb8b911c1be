package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/tui/components"
	"github.com/mmcdole/archivist/internal/tui/styles"
	"github.com/mmcdole/archivist/internal/view"
)

type listFlags struct {
	page     int
	size     int
	sort     string
	desc     bool
	asc      bool
	filter   string
	tag      string
	author   string
	docType  string
	dateFrom string
	dateTo   string
}

func newListCmd(configDir *string) *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of documents",
		Long:  "Print one page of documents. Example:\n  archivist list --tag finance --sort title --page 2",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configDir)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireServer(); err != nil {
				return err
			}

			opts, err := listOptions(a, cmd, f)
			if err != nil {
				return err
			}
			svc, err := catalog.NewService(a.client, a.logger, opts)
			if err != nil {
				return err
			}

			detach := attachSpinner(a.counter, "Loading documents...")
			_, err = svc.Refresh(cmd.Context(), nil)
			detach()
			if err != nil {
				return fmt.Errorf("failed to load documents: %w", err)
			}

			svc.SetFilter(f.filter)
			if err := svc.Source().SetPage(max(f.page, 1)-1, opts.PageSize); err != nil {
				return err
			}

			printPage(cmd.OutOrStdout(), svc.Source().View())
			return nil
		},
	}

	cmd.Flags().IntVar(&f.page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&f.size, "size", 0, "page size (default from config)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort column: id, title, type, author, date, privacy")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "sort ascending")
	cmd.Flags().StringVar(&f.filter, "filter", "", "fuzzy filter, supports tag:, type:, author:, privacy:")
	cmd.Flags().StringVar(&f.tag, "tag", "", "server-side tag filter")
	cmd.Flags().StringVar(&f.author, "author", "", "server-side author filter")
	cmd.Flags().StringVar(&f.docType, "type", "", "server-side document type filter")
	cmd.Flags().StringVar(&f.dateFrom, "from", "", "earliest document date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dateTo, "to", "", "latest document date (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("desc", "asc")
	return cmd
}

// listOptions layers the command flags over the configured view defaults
func listOptions(a *app, cmd *cobra.Command, f listFlags) (catalog.Options, error) {
	opts, err := catalogOptions(a.cfg)
	if err != nil {
		return opts, err
	}

	if cmd.Flags().Changed("size") {
		if f.size <= 0 {
			return opts, view.ErrInvalidPageSize
		}
		opts.PageSize = f.size
	}

	if f.sort != "" {
		field, err := catalog.ParseSortField(f.sort)
		if err != nil {
			return opts, err
		}
		opts.Sort = catalog.SortSelection{Field: field, Direction: catalog.DefaultDirection(field)}
	}
	if opts.Sort.Field != catalog.SortDefault {
		switch {
		case f.desc:
			opts.Sort.Direction = view.Desc
		case f.asc:
			opts.Sort.Direction = view.Asc
		}
	}

	opts.Query = domain.DocumentQuery{Tag: f.tag, Author: f.author, Type: f.docType}
	if opts.Query.DateFrom, err = parseDate(f.dateFrom); err != nil {
		return opts, fmt.Errorf("--from: %w", err)
	}
	if opts.Query.DateTo, err = parseDate(f.dateTo); err != nil {
		return opts, fmt.Errorf("--to: %w", err)
	}
	return opts, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

func printPage(w io.Writer, r view.Result[domain.Document]) {
	if len(r.Items) == 0 {
		fmt.Fprintln(w, "No documents")
		fmt.Fprintln(w, components.PageIndicator(r))
		return
	}

	rows := make([][]string, len(r.Items))
	for i, d := range r.Items {
		rows[i] = []string{d.DisplayID(), d.FormattedDate(), d.Title, d.TypeName, d.AuthorName, string(d.Privacy), strings.Join(d.Tags, ", ")}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.DimStyle).
		Headers("ID", "Date", "Title", "Type", "Author", "Privacy", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, components.PageIndicator(r))
}

func newShowCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a single document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			a, err := loadApp(*configDir)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireServer(); err != nil {
				return err
			}

			detach := attachSpinner(a.counter, "Loading document...")
			d, err := a.client.GetDocument(cmd.Context(), id)
			detach()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s\n", styles.AccentStyle.Render("#"+d.DisplayID()), styles.TitleStyle.Render(d.Title))
			fmt.Fprintf(w, "Date:    %s\n", d.FormattedDate())
			fmt.Fprintf(w, "Type:    %s\n", d.TypeName)
			fmt.Fprintf(w, "Author:  %s\n", d.AuthorName)
			fmt.Fprintf(w, "Privacy: %s\n", d.Privacy)
			if len(d.Tags) > 0 {
				fmt.Fprintf(w, "Tags:    %s\n", strings.Join(d.Tags, ", "))
			}
			if d.CreatedByLogin != "" {
				fmt.Fprintf(w, "Created: %s by %s\n", d.CreatedAt.Format(time.DateTime), d.CreatedByLogin)
			}
			return nil
		},
	}
}
