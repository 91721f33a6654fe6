/**
 * Copyright 2026 Dagpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package prompt

import (
	"bytes"
	_ "embed"
	"os"
	"text/template"
)

type Prompt interface {
	String() string
}

type TextPrompt string

func (p TextPrompt) String() string {
	return string(p)
}

func NewTextPrompt(content string) Prompt {
	return TextPrompt(content)
}

// TemplatePrompt renders a parsed template with Data on every String call.
type TemplatePrompt struct {
	Data any
	tpl  *template.Template
}

func (p TemplatePrompt) String() string {
	var buf bytes.Buffer
	if err := p.tpl.Execute(&buf, p.Data); err != nil {
		panic(err)
	}
	return buf.String()
}

// NewTemplatePrompt parses src as a text template. Prompts carry code, so
// text/template is used; HTML escaping would corrupt the payload.
func NewTemplatePrompt(name, src string, data any) (Prompt, error) {
	tpl, err := template.New(name).Parse(src)
	if err != nil {
		return nil, err
	}
	return TemplatePrompt{Data: data, tpl: tpl}, nil
}

// NewFilePrompt reads a template from path.
func NewFilePrompt(path string, data any) (Prompt, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewTemplatePrompt(path, string(bs), data)
}

//go:embed editor.md
var PromptEditorSystem string

//go:embed edit_request.md
var PromptEditRequest string
