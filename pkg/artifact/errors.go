// Daily3Albums Unlock
// Copyright (c) 2026 The Daily3Albums Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Daily3Albums Unlock.
//
// Daily3Albums Unlock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Daily3Albums Unlock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Daily3Albums Unlock.  If not, see <http://www.gnu.org/licenses/>.

package artifact

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport matches any failure to complete a fetch.
	ErrTransport = errors.New("transport error")
	// ErrStructural matches payloads that parsed but have the wrong shape.
	ErrStructural = errors.New("structural error")
)

// TransportError is returned when a request fails or answers non-2xx.
type TransportError struct {
	Err        error
	URL        string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// NotFound reports whether the server answered 404.
func (e *TransportError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 TransportError.
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.NotFound()
}

// FieldError is one shape violation.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// StructuralError is returned when a payload is not valid JSON or is
// missing required fields.
type StructuralError struct {
	Err    error
	Source string
	Fields []FieldError
}

func (e *StructuralError) Error() string {
	prefix := "invalid artifact"
	if e.Source != "" {
		prefix = "invalid artifact " + e.Source
	}
	if len(e.Fields) == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", prefix, e.Err)
		}
		return prefix
	}
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Message
	}
	return prefix + ": " + strings.Join(msgs, "; ")
}

func (e *StructuralError) Unwrap() error { return e.Err }

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }
