package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ValuesAPI is the slice of the Sheets values surface the export worker
// needs. Tests substitute an in-memory fake.
type ValuesAPI interface {
	Rows(ctx context.Context, tab string) ([][]string, error)
	Update(ctx context.Context, tab, a1Range string, rows [][]string) error
	Append(ctx context.Context, tab string, row []string) error
}

type Config struct {
	SpreadsheetID   string
	CredentialsFile string
}

type client struct {
	cfg *Config
	srv *sheetsapi.Service
}

func New(ctx context.Context, cfg *Config) (ValuesAPI, error) {
	srv, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &client{cfg: cfg, srv: srv}, nil
}

func (c *client) Rows(ctx context.Context, tab string) ([][]string, error) {
	resp, err := c.srv.Spreadsheets.Values.
		Get(c.cfg.SpreadsheetID, tab).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %q: %w", tab, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (c *client) Update(ctx context.Context, tab, a1Range string, rows [][]string) error {
	_, err := c.srv.Spreadsheets.Values.
		Update(c.cfg.SpreadsheetID, fmt.Sprintf("%s!%s", tab, a1Range), valueRange(rows)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s!%s: %w", tab, a1Range, err)
	}

	return nil
}

func (c *client) Append(ctx context.Context, tab string, row []string) error {
	_, err := c.srv.Spreadsheets.Values.
		Append(c.cfg.SpreadsheetID, tab, valueRange([][]string{row})).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to tab %q: %w", tab, err)
	}

	return nil
}

func valueRange(rows [][]string) *sheetsapi.ValueRange {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}

	return &sheetsapi.ValueRange{Values: values}
}
