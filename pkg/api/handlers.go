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

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/api/validation"
	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("api: error writing response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err //nolint:wrapcheck // reported to the client as is
	}
	return body, nil
}

// overrideStatus maps override errors onto HTTP statuses.
func overrideStatus(err error) int {
	var verr *validation.Error
	switch {
	case errors.Is(err, clock.ErrOverrideParse),
		errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams),
		errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleState serves the state document. The first request of a session
// may carry debug_time; later ones never change the override.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.InitOverride(r.URL.Query()); err != nil {
		writeError(w, overrideStatus(err), err)
		return
	}

	resp := NewStateResponse(s.backend.State())
	status := http.StatusOK
	if resp.HardEmpty {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleRetry(w http.ResponseWriter, _ *http.Request) {
	joined, state := s.backend.RetryNow()
	writeJSON(w, http.StatusAccepted, models.RetryResponse{
		Connectivity: state.String(),
		Joined:       joined,
	})
}

func (s *Server) handleGetOverride(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, overrideResponse(s.backend.Override(), s.backend.Sample()))
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req models.OverrideRequest
	if err := validation.ValidateAndUnmarshal(body, &req); err != nil {
		writeError(w, overrideStatus(err), err)
		return
	}
	if err := s.backend.SetOverride(req.Value); err != nil {
		writeError(w, overrideStatus(err), err)
		return
	}
	s.handleGetOverride(w, r)
}

func (s *Server) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.SetOverride(nil); err != nil {
		writeError(w, overrideStatus(err), err)
		return
	}
	s.handleGetOverride(w, r)
}

func (s *Server) handleShiftOverride(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req models.ShiftRequest
	if err := validation.ValidateAndUnmarshal(body, &req); err != nil {
		writeError(w, overrideStatus(err), err)
		return
	}
	if _, err := s.backend.ShiftOverride(time.Duration(req.Seconds) * time.Second); err != nil {
		writeError(w, overrideStatus(err), err)
		return
	}
	s.handleGetOverride(w, r)
}
