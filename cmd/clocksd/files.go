// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "os"

// FileArgs iterates over a list of input file names, opening each in
// turn. If the list is empty, it produces stdin. Next returns nil at
// the end of the list.
type FileArgs struct {
	Args []string

	next int
	f    *os.File
}

func (fa *FileArgs) Next() (*os.File, error) {
	if fa.f != nil {
		err := fa.f.Close()
		fa.f = nil
		if err != nil {
			return nil, err
		}
	}

	if fa.next >= len(fa.Args) {
		if fa.next == 0 {
			fa.next++
			return os.Stdin, nil
		}
		return nil, nil
	}

	f, err := os.Open(fa.Args[fa.next])
	if err != nil {
		return nil, err
	}
	fa.next++
	fa.f = f
	return f, nil
}
