package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/config"
	"github.com/mmcdole/archivist/internal/tui"
	"github.com/mmcdole/archivist/internal/view"
)

func runTUI(ctx context.Context, a *app) error {
	if err := a.requireServer(); err != nil {
		return err
	}

	opts, err := catalogOptions(a.cfg)
	if err != nil {
		return err
	}
	svc, err := catalog.NewService(a.client, a.logger, opts)
	if err != nil {
		return err
	}

	model := tui.NewModel(ctx, svc, a.counter)
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// catalogOptions maps the view section of the config onto catalog options
func catalogOptions(cfg *config.Config) (catalog.Options, error) {
	field, err := catalog.ParseSortField(cfg.View.SortField)
	if err != nil {
		return catalog.Options{}, fmt.Errorf("view.sort_field: %w", err)
	}
	return catalog.Options{
		PageSize: cfg.View.PageSize,
		Sort:     catalog.SortSelection{Field: field, Direction: sortDirection(field, cfg.View.SortDesc)},
	}, nil
}

func sortDirection(field catalog.SortField, desc bool) view.Direction {
	switch {
	case field == catalog.SortDefault:
		return view.None
	case desc:
		return view.Desc
	default:
		return view.Asc
	}
}
