// Copyright 2024 The go-morph Authors
// This file is part of the go-morph library.
//
// The go-morph library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-morph library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-morph library. If not, see <http://www.gnu.org/licenses/>.

package common

import "errors"

func ValidateNil(data interface{}, msg string) error {
	if data == nil {
		return errors.New(msg + ` must be specified`)
	}
	return nil
}

// ValidateStringLen checks that s is non-empty and at most max bytes long.
func ValidateStringLen(s string, max int, msg string) error {
	if len(s) == 0 {
		return errors.New(msg + ` must be specified`)
	}
	if len(s) > max {
		return errors.New(msg + ` is too long`)
	}
	return nil
}
