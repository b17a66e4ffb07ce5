// Copyright 2025 Magnus Pierre
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

// Package script compiles short Go snippets from configuration files into
// cell getters and renderers. Snippets are function bodies; the packages
// fmt, math, strconv, strings and time are imported for them.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ErrCompile is returned when a snippet fails to compile.
var ErrCompile = errors.New("script compile failed")

const prelude = `package dtscript

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	_ = fmt.Sprint
	_ = math.Abs
	_ = strconv.Itoa
	_ = strings.ToUpper
	_ = time.Now
)
`

// getterTemplate receives the row backing object as row.
const getterTemplate = prelude + `
func Fn(row interface{}) interface{} {
%s
}
`

// renderTemplate receives the resolved cell value as data, the requested
// representation ("display", "filter", "sort", "type") as mode, and the
// row backing object as row.
const renderTemplate = prelude + `
func Fn(data interface{}, mode string, row interface{}) interface{} {
%s
}
`

// CompileGetter compiles a getter body such as `return row.(map[string]interface{})["a"]`.
func CompileGetter(body string) (func(row any) any, error) {
	v, err := compile(getterTemplate, body)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(func(any) any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected getter type %T", ErrCompile, v)
	}
	var mu sync.Mutex
	return func(row any) any {
		mu.Lock()
		defer mu.Unlock()
		return fn(row)
	}, nil
}

// CompileRender compiles a render body such as `return strings.ToUpper(fmt.Sprint(data))`.
func CompileRender(body string) (func(data any, mode string, row any) any, error) {
	v, err := compile(renderTemplate, body)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(func(any, string, any) any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected render type %T", ErrCompile, v)
	}
	var mu sync.Mutex
	return func(data any, mode string, row any) any {
		mu.Lock()
		defer mu.Unlock()
		return fn(data, mode, row)
	}, nil
}

func compile(template, body string) (any, error) {
	var out bytes.Buffer
	i := interp.New(interp.Options{
		Stdout: &out,
		Stderr: &out,
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: loading stdlib: %w", ErrCompile, err)
	}
	if _, err := i.Eval(fmt.Sprintf(template, body)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	v, err := i.Eval("dtscript.Fn")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	return v.Interface(), nil
}
