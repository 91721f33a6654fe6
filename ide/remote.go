// Copyright 2026 Dagpilot Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ide

import (
	"context"
	"io"
	"net"

	"github.com/pkg/errors"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

// Remote is the IDE implementation backed by an attached editor speaking
// JSON-RPC 2.0 over a socket (LSP base protocol framing). The editor side
// owns rendering and the input box; this client only issues requests.
type Remote struct {
	conn *jsonrpc2.Conn
}

var _ IDE = (*Remote)(nil)

// Protocol methods served by the editor host.
const (
	MethodWorkspaceDirectory = "workspace/getDirectory"
	MethodHighlightCode      = "textDocument/highlight"
	MethodInputRequest       = "input/request"
	MethodShowMessage        = "window/showMessage"
)

type workspaceDirectoryResult struct {
	Directory string `json:"directory"`
}

type highlightParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
	Range        lsp.Range                  `json:"range"`
	Color        string                     `json:"color"`
}

type inputRequestParams struct {
	Prompt string `json:"prompt"`
}

type inputRequestResult struct {
	Text string `json:"text"`
}

// Dial connects to an editor host listening on a tcp address.
func Dial(ctx context.Context, addr string) (*Remote, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial ide host %s", addr)
	}
	return NewRemote(ctx, c), nil
}

// NewRemote wraps an established transport. The caller keeps ownership of
// nothing; Close tears the connection down.
func NewRemote(ctx context.Context, rwc io.ReadWriteCloser) *Remote {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, noopHandler{})
	return &Remote{conn: conn}
}

func (r *Remote) Close() error {
	return r.conn.Close()
}

func (r *Remote) WorkspaceDirectory(ctx context.Context) (string, error) {
	var res workspaceDirectoryResult
	if err := r.conn.Call(ctx, MethodWorkspaceDirectory, nil, &res); err != nil {
		return "", errors.Wrap(err, MethodWorkspaceDirectory)
	}
	if res.Directory == "" {
		return "", errors.New("ide host returned empty workspace directory")
	}
	return res.Directory, nil
}

func (r *Remote) HighlightCode(ctx context.Context, rif RangeInFile, color string) error {
	params := highlightParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: lsp.DocumentURI("file://" + rif.Filepath)},
		Range:        toLSPRange(rif.Range),
		Color:        color,
	}
	var res any
	return errors.Wrap(r.conn.Call(ctx, MethodHighlightCode, params, &res), MethodHighlightCode)
}

func (r *Remote) WaitForUserInput(ctx context.Context, prompt string) (string, error) {
	var res inputRequestResult
	if err := r.conn.Call(ctx, MethodInputRequest, inputRequestParams{Prompt: prompt}, &res); err != nil {
		return "", errors.Wrap(err, MethodInputRequest)
	}
	return res.Text, nil
}

func (r *Remote) ShowMessage(ctx context.Context, name, message string) error {
	if name != "" {
		message = name + ": " + message
	}
	params := lsp.ShowMessageParams{Type: lsp.Info, Message: message}
	return errors.Wrap(r.conn.Notify(ctx, MethodShowMessage, params), MethodShowMessage)
}

func toLSPRange(r Range) lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   lsp.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

// noopHandler ignores requests from the editor side; the protocol is
// client-initiated only.
type noopHandler struct{}

func (noopHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {}
