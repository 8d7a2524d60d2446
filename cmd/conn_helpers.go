// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"querydesk/cli/internal/config"
	"querydesk/cli/internal/connstore"
	"querydesk/cli/internal/dsn"
	qerrors "querydesk/cli/internal/errors"
	"querydesk/cli/internal/keychain"
	"querydesk/cli/internal/session"
)

// resolveConnectionName picks the connection to use: the explicit flag
// value when given, otherwise the configured default.
func resolveConnectionName(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.DefaultConnection == "" {
		return "", qerrors.New(qerrors.ConnectionNotFound,
			"no connection given and no default configured; run 'querydesk connect <name>' first")
	}
	return cfg.DefaultConnection, nil
}

// openSession loads a saved connection's DSN from the keychain and opens
// a live session for it. The caller owns Close.
func openSession(ctx context.Context, name string) (session.Session, connstore.Connection, error) {
	store, err := connstore.NewStore()
	if err != nil {
		return nil, connstore.Connection{}, err
	}
	desc, err := store.Get(name)
	if err != nil {
		return nil, connstore.Connection{}, err
	}

	km, err := keychain.GetManager()
	if err != nil {
		return nil, desc, qerrors.Wrap(qerrors.ConnectFailed, "secure storage unavailable", err)
	}
	rawDSN, err := km.LoadConnectionDSN(name)
	if err != nil {
		return nil, desc, qerrors.Wrap(qerrors.ConnectFailed, "no stored credentials for "+name, err)
	}

	info, err := dsn.ParseInfo(rawDSN)
	if err != nil {
		return nil, desc, err
	}
	sess, err := session.Open(ctx, info)
	if err != nil {
		_ = store.MarkConnected(name, false)
		return nil, desc, qerrors.Wrap(qerrors.ConnectFailed, "could not open session", err)
	}
	_ = store.MarkConnected(name, true)
	return sess, desc, nil
}
