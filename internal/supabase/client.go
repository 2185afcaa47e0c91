package supabase

import (
	"context"
	"fmt"

	"bust-order-backend/internal/config"

	"github.com/supabase-community/supabase-go"
)

// Client wraps the Supabase API client. Orders are read and written over the
// direct Postgres connection; this client only backs the connectivity probe.
type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// ProbeOrders reads one row id from the orders table through PostgREST to
// confirm that the URL and service role key work.
func (c *Client) ProbeOrders(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := c.Supabase.From("orders").Select("id", "", false).Limit(1, "").Execute()
	if err != nil {
		return fmt.Errorf("failed to query orders via supabase api: %w", err)
	}
	return nil
}
