package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"document-gateway/internal/config"
	"document-gateway/internal/logging"
	"document-gateway/registry/domain"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSubmitCmd(cfg *config.Config) *cobra.Command {
	var (
		file      string
		signature string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one document read from a JSON file (or - for stdin)",
		Example: `  docgate submit -f document.json --signature "$(cat doc.sig)"
  cat document.json | docgate submit -f - --signature "$SIG" --endpoint https://localhost:8443/create`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			client, _, cleanup, err := newClient(cfg, logging.Default())
			if err != nil {
				return err
			}
			defer cleanup()

			rcpt := client.Submit(ctx, doc, signature)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rcpt); err != nil {
				return err
			}
			if !rcpt.Admitted() {
				return errors.Errorf("submission %s was not admitted", rcpt.ID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "document JSON file, - for stdin")
	f.StringVar(&signature, "signature", "", "pre-computed document signature")
	f.DurationVar(&timeout, "timeout", 0, "overall deadline, including the wait for a permit")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func readDocument(path string, stdin io.Reader) (domain.Document, error) {
	var r io.Reader = stdin
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return domain.Document{}, errors.Wrap(err, "open document")
		}
		defer fh.Close()
		r = fh
	}

	var doc domain.Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return domain.Document{}, errors.Wrap(err, "decode document")
	}
	return doc, nil
}
