// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scene

import (
	"errors"
	"fmt"
)

// Sentinel errors for Store operations.
var (
	// ErrObjectVanished reports that an object was deleted by an external
	// actor between lookup and use. Always non-fatal: callers skip the
	// entity and continue.
	ErrObjectVanished = errors.New("object no longer exists in store")

	// ErrMaterialVanished reports a deleted material data block.
	ErrMaterialVanished = errors.New("material no longer exists in store")

	// ErrCollectionNotFound reports an unknown collection scope.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrWrongMode reports a bulk operation attempted outside the
	// interaction mode it requires.
	ErrWrongMode = errors.New("object is not in the required interaction mode")

	// ErrMultiUserData reports a bake attempted against a shared data
	// block. Callers must make the block single-user first.
	ErrMultiUserData = errors.New("data block is shared by multiple objects")

	// ErrNotSoleSelection reports a bulk operation attempted while the
	// target is not the exclusively selected, active object.
	ErrNotSoleSelection = errors.New("object is not the sole selection")

	// ErrDataInUse reports a data block removal while objects still
	// reference it.
	ErrDataInUse = errors.New("data block still has users")
)

// ModeError describes a failed interaction-mode switch.
type ModeError struct {
	Object string
	Want   Mode
	Have   Mode
}

// Error implements the error interface.
func (e *ModeError) Error() string {
	return fmt.Sprintf("object %q is in mode %s, need %s", e.Object, e.Have, e.Want)
}

// Unwrap returns the sentinel error.
func (e *ModeError) Unwrap() error { return ErrWrongMode }
