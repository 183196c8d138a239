// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package credentials implements "httpnode credentials".
package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-httpnodes/internal/commands/shared"
	"github.com/tombee/conductor-httpnodes/internal/secrets"
	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
	"github.com/tombee/conductor-httpnodes/pkg/node"
	pkgsecrets "github.com/tombee/conductor-httpnodes/pkg/secrets"
)

// NewCommand creates the credentials command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage stored credential records",
		Long: `Manage the credential records used by the "authentication" parameter.

Records are stored as JSON under credentials/<type> in the first writable
secret backend, normally the OS keychain. They are looked up in order:
  1. Environment variables (HTTPNODE_SECRET_CREDENTIALS_<TYPE>, read-only)
  2. Inline records in the config file (read-only)
  3. System keychain

Examples:
  httpnode credentials set httpbinApi
  httpnode credentials set genericHttpAuthApi --file basic.yaml
  httpnode credentials get genericHttpAuthApi
  httpnode credentials delete httpbinApi --force`,
	}

	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newDeleteCommand())
	return cmd
}

func newSetCommand() *cobra.Command {
	var file, backend string
	cmd := &cobra.Command{
		Use:   "set <type>",
		Short: "Store a credential record",
		Long: `Store a credential record read from a YAML or JSON file, or entered
field by field. Secret fields are read without echo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				ct, err := credentialType(rt, args[0])
				if err != nil {
					return err
				}

				var rec map[string]any
				if file != "" {
					rec, err = readRecord(file)
				} else {
					if shared.IsNonInteractive() && !isPipe(cmd.InOrStdin()) {
						return shared.NewInvalidInputError("no terminal to prompt on; use --file", nil)
					}
					rec, err = newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).record(ct)
				}
				if err != nil {
					return shared.NewInvalidInputError("failed to read credential", err)
				}
				if len(rec) == 0 {
					return shared.NewInvalidInputError("credential record is empty", nil)
				}

				if err := rt.Credentials.Save(ctx, ct.Name, rec, backend); err != nil {
					if errors.Is(err, secrets.ErrBackendUnavailable) {
						return fmt.Errorf("no writable backend: %w\n\nSet %s instead", err,
							secrets.EnvVarName(secrets.CredentialKey(ct.Name)))
					}
					return nodeerrors.Wrap(err, "failed to store credential")
				}
				cmd.Printf("Credential %s stored\n", ct.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the record from a YAML or JSON file")
	cmd.Flags().StringVar(&backend, "backend", "", "Target backend (keychain)")
	return cmd
}

func newGetCommand() *cobra.Command {
	var unmask bool
	cmd := &cobra.Command{
		Use:   "get <type>",
		Short: "Show a stored credential record",
		Long:  `Show a stored credential record. Secret fields are masked unless --unmask is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				ct, err := credentialType(rt, args[0])
				if err != nil {
					return err
				}
				rec, err := rt.Credentials.Credential(ctx, ct.Name)
				if err != nil {
					if errors.Is(err, secrets.ErrSecretNotFound) {
						return shared.NewNotFoundError(fmt.Sprintf("no %s credential stored", ct.Name), err)
					}
					return err
				}
				if !unmask {
					rec = maskRecord(rec, ct, rt.Masker)
				}

				if shared.GetJSON() {
					return shared.EmitJSON(cmd.OutOrStdout(), rec)
				}
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(rec)
			})
		},
	}
	cmd.Flags().BoolVar(&unmask, "unmask", false, "Show secret fields in full")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	var backend string
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <type>",
		Short: "Remove a stored credential record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *shared.Runtime) error {
				ct, err := credentialType(rt, args[0])
				if err != nil {
					return err
				}
				if !force {
					cmd.Printf("Delete credential %s? [y/N]: ", ct.Name)
					line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					answer := strings.ToLower(strings.TrimSpace(line))
					if answer != "y" && answer != "yes" {
						cmd.Println("Deletion canceled")
						return nil
					}
				}

				if err := rt.Credentials.Delete(ctx, ct.Name, backend); err != nil {
					switch {
					case errors.Is(err, secrets.ErrSecretNotFound):
						return shared.NewNotFoundError(fmt.Sprintf("no %s credential stored", ct.Name), err)
					case errors.Is(err, secrets.ErrReadOnlyBackend):
						return errors.New("credential is defined in a read-only backend (environment or config file)")
					}
					return nodeerrors.Wrap(err, "failed to delete credential")
				}
				cmd.Printf("Credential %s deleted\n", ct.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "Target backend (keychain)")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	return cmd
}

func withRuntime(cmd *cobra.Command, fn func(context.Context, *shared.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := shared.NewRuntime(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()
	return fn(ctx, rt)
}

func credentialType(rt *shared.Runtime, name string) (*node.CredentialType, error) {
	ct, err := rt.Registry.Credential(name)
	if err != nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("unknown credential type %q", name), err)
	}
	return ct, nil
}

func readRecord(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec := map[string]any{}
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, nodeerrors.Wrapf(err, "parse %s", path)
	}
	return rec, nil
}

// maskRecord registers the record's password-typed values, including custom
// header values, with the masker and returns the masked copy.
func maskRecord(rec map[string]any, ct *node.CredentialType, m *pkgsecrets.Masker) map[string]any {
	for _, f := range ct.SecretFields() {
		if v, ok := rec[f].(string); ok {
			m.AddSecret(v)
		}
	}
	m.AddSecret(headerValues(rec["customHeaders"])...)
	return m.MaskRecord(rec)
}

func headerValues(v any) []string {
	coll, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := coll["keyvalue"].([]any)
	if !ok {
		return nil
	}
	var values []string
	for _, entry := range list {
		if h, ok := entry.(map[string]any); ok {
			if s, ok := h["value"].(string); ok {
				values = append(values, s)
			}
		}
	}
	return values
}

func isPipe(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice == 0
}

// prompter asks for each visible scalar property of a credential type.
type prompter struct {
	in  *bufio.Reader
	out io.Writer

	// readSecret reads a value without echo when stdin is a terminal.
	readSecret func() (string, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out}
	p.readSecret = p.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return p
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompter) record(ct *node.CredentialType) (map[string]any, error) {
	rec := map[string]any{}
	for _, prop := range ct.Properties {
		if prop.Type == node.TypeFixedCollection || prop.Type == node.TypeNotice {
			continue
		}

		// Display conditions refer to earlier answers such as authType.
		values := map[string]any{}
		for _, q := range ct.Properties {
			values[q.Name] = q.Default
		}
		for k, v := range rec {
			values[k] = v
		}
		if !prop.Visible(values) {
			continue
		}

		fmt.Fprint(p.out, prompt(prop))
		var (
			v   string
			err error
		)
		if prop.TypeOptions != nil && prop.TypeOptions.Password {
			v, err = p.readSecret()
		} else {
			v, err = p.readLine()
		}
		if err != nil {
			return nil, err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			if def, ok := prop.Default.(string); ok && def != "" {
				rec[prop.Name] = def
			}
			continue
		}
		if len(prop.Options) > 0 && !validOption(prop, v) {
			return nil, fmt.Errorf("%s must be one of %s", prop.Name, optionList(prop))
		}
		rec[prop.Name] = v
	}
	return rec, nil
}

func prompt(prop node.Property) string {
	s := prop.DisplayName
	if len(prop.Options) > 0 {
		s += " (" + optionList(prop) + ")"
	}
	if def, ok := prop.Default.(string); ok && def != "" {
		s += " [" + def + "]"
	}
	return s + ": "
}

func validOption(prop node.Property, v string) bool {
	for _, o := range prop.Options {
		if fmt.Sprint(o.Value) == v {
			return true
		}
	}
	return false
}

func optionList(prop node.Property) string {
	vals := make([]string, 0, len(prop.Options))
	for _, o := range prop.Options {
		vals = append(vals, fmt.Sprint(o.Value))
	}
	sort.Strings(vals)
	return strings.Join(vals, ", ")
}
