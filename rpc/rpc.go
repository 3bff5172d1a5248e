// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rpc defines the narrow monitoring surface a long-running
// tablechain process exposes: enough for an operator or a sidecar health
// check to see where HEAD is without reaching into the work directory
// directly.
package rpc

import (
	"context"

	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/store"
)

// StatusService reports the current chain position of a work directory.
type StatusService interface {
	Status(ctx context.Context, req *StatusRequest) (*StatusResponse, error)
}

type StatusRequest struct{}

// StatusResponse mirrors the HEAD/STATE/REPORTED pointer files. Head and
// Reported are the 40-hex hash form, or empty when the pointer is
// absent. STATE is not itself a hash — it holds the wire-encoded (and
// possibly compressed) state blob — so it is reported by presence and
// size instead.
type StatusResponse struct {
	Head         string
	StatePresent bool
	StateBytes   int
	Reported     string
}

// localStatus answers Status from a work directory directly. A
// networked StatusService (gRPC, HTTP) is expected to wrap this.
type localStatus struct {
	st *store.Store
}

// NewLocalStatus builds a StatusService bound to cfg's work directory.
func NewLocalStatus(cfg config.Config) StatusService {
	return &localStatus{st: store.Open(cfg.WorkDir)}
}

func (s *localStatus) Status(ctx context.Context, req *StatusRequest) (*StatusResponse, error) {
	resp := &StatusResponse{}
	if h, err := s.st.ReadHash(store.HEAD); err == nil {
		resp.Head = h.String()
	}
	if data, err := s.st.Read(store.STATE); err == nil {
		resp.StatePresent = true
		resp.StateBytes = len(data)
	}
	if h, err := s.st.ReadHash(store.REPORTED); err == nil {
		resp.Reported = h.String()
	}
	return resp, nil
}
