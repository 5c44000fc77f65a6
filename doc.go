/*
Package clrmeta reads ECMA-335 metadata: the tables, heaps and signatures
stored in .NET assemblies and Windows Runtime .winmd files.

A Database is opened over an immutable image (Open for an in-memory
metadata root, OpenFile to memory-map a PE file) and is read-only from then
on, so it may be shared between goroutines without locking. Everything
else is derived on demand:

1. Tables are fixed-stride row arrays. Table exposes raw column reads and
the range queries used to navigate them (LowerBound, UpperBound,
EqualRange, GetList, GetParentRow).

2. Rows are (table, index) positions. Each table has a view type (TypeDef,
MethodDef, CustomAttribute, ...) with typed column accessors and the
derived relationships: member lists, owners, and children found by binary
search over sorted tables.

3. Coded indexes are polymorphic foreign keys. CodedIndex keeps the raw
value and its scheme; Row materializes the target.

4. Signatures are decoded from blobs into immutable trees (MethodDefSig,
FieldSig, PropertySig, TypeSpecSig, CustomAttributeSig, ...).

# Binary encoding

**Compressed integers** (signature lengths, counts, coded indexes inside
signatures) take 1, 2 or 4 bytes selected by the leading bits 0, 10 and 110.

**Blob lengths** use a separate header with the same widths. The two are
decoded by DecodeCompressedUint and DecodeBlobLength respectively.

**Heap references** are 2 or 4 bytes wide depending on the HeapSizes flags
of the table stream; table references are 4 bytes wide when the target
table has more than 0xFFFF rows, coded indexes when any candidate table
has at least 2^(16-tagBits) rows.

**Lists** (e.g. TypeDef.FieldList) store only a 1-based start row; a list
ends where the next owner's list starts, or at the end of the table.

# Errors

Out-of-bounds reads return *RangeError, malformed data *DecodeError, and
recognized but undecoded signature forms *UnsupportedFormError. A failed
decode affects only the blob or row being read.
*/
package clrmeta
