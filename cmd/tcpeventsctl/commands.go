package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/tcpevents/internal/protocol/literal"
	"github.com/danmuck/tcpevents/internal/sender"
)

// parseValue reads raw as a literal and falls back to the raw text.
func parseValue(raw string) any {
	v, err := literal.Decode(raw)
	if err != nil {
		return raw
	}
	return v
}

func sendEventCmd(opts *globalOptions) *cobra.Command {
	var (
		prefix  string
		payload string
	)
	cmd := &cobra.Command{
		Use:   "send-event SUFFIX",
		Short: "Fire PREFIX.SUFFIX on the receiver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			req := sender.EventRequest{
				Destination: opts.destination(),
				Prefix:      prefix,
				Suffix:      args[0],
			}
			if cmd.Flags().Changed("payload") {
				req.Payload = parseValue(payload)
				req.HasPayload = true
			}
			res, err := client.SendEvent(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s peer=%s\n", res.Event, res.Peer)
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "event prefix, empty uses the receiver default")
	cmd.Flags().StringVar(&payload, "payload", "", "payload literal, bare text is sent as a string")
	return cmd
}

func sendDataCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send-data NAME VALUE",
		Short: "Store VALUE under NAME on the receiver",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			err = client.SendData(cmd.Context(), sender.DataRequest{
				Destination: opts.destination(),
				Name:        args[0],
				Value:       parseValue(args[1]),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
			return nil
		},
	}
}

func requestDataCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "request-data EXPRESSION",
		Short: "Evaluate EXPRESSION on the receiver and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			value, found, err := client.RequestData(cmd.Context(), sender.ExpressionRequest{
				Destination: opts.destination(),
				Expression:  args[0],
			})
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "no result")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), literal.Render(value))
			return nil
		},
	}
}

type dataResponse struct {
	Name    string `json:"name"`
	Literal string `json:"literal"`
	Error   string `json:"error"`
}

func getDataCmd(opts *globalOptions) *cobra.Command {
	var (
		adminURL string
		token    string
	)
	cmd := &cobra.Command{
		Use:   "get-data NAME",
		Short: "Read stored data from the receiver admin API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := strings.TrimRight(strings.TrimSpace(adminURL), "/")
			if base == "" {
				return fmt.Errorf("--admin is required")
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, base+"/data/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			timeout := opts.communicationTimeout
			if timeout <= 0 {
				timeout = 5 * time.Second
			}
			resp, err := (&http.Client{Timeout: timeout}).Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var body dataResponse
			if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
				return fmt.Errorf("decode admin response (status %d): %w", resp.StatusCode, err)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("admin: %s (status %d)", body.Error, resp.StatusCode)
			}
			fmt.Fprintln(cmd.OutOrStdout(), body.Literal)
			return nil
		},
	}
	cmd.Flags().StringVar(&adminURL, "admin", "http://127.0.0.1:8024", "receiver admin base URL")
	cmd.Flags().StringVar(&token, "token", "", "admin bearer token")
	return cmd
}
