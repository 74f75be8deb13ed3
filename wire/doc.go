// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the bitcoin wire protocol primitives.

This package provides the data structures and serialization code for the
fundamental bitcoin types: transactions (MsgTx), block headers (BlockHeader),
and full blocks (MsgBlock), along with the variable length integer and byte
array encodings they build on.

# Bitcoin Message Overview

Every serialized type in this package offers two pairs of functions.  The
BtcEncode and BtcDecode functions deal with the protocol encoding used on the
wire while Serialize and Deserialize deal with the stable long-term storage
format used by the database.  At the current time the two encodings are
identical, but keeping them separate allows either to change without breaking
the other.

# Errors

Errors returned by this package are either the raw errors provided by
underlying calls to read/write data such as io.EOF, io.ErrUnexpectedEOF, and
io.ErrShortWrite, or of type wire.MessageError.  This allows the caller to
differentiate between general IO errors and malformed data through type
assertions.
*/
package wire
