package odrtable

import "errors"

var (
	// ErrCompress wraps a codec failure inside Builder.Build.
	ErrCompress = errors.New("odrtable: compress detail blob")
	// ErrDecompress wraps a blob that cannot be inflated to its declared size.
	ErrDecompress = errors.New("odrtable: decompress detail blob")
	// ErrInvalidProducer is returned for producer strings containing NUL.
	ErrInvalidProducer = errors.New("odrtable: producer must not contain NUL")
	// ErrBuilderUsed is returned when Build is called twice.
	ErrBuilderUsed = errors.New("odrtable: builder already built")
	// ErrUnsupportedVersion is returned by ReadTables for foreign table versions.
	ErrUnsupportedVersion = errors.New("odrtable: unsupported table version")
	// ErrUnknownCodec is returned by CodecByName.
	ErrUnknownCodec = errors.New("odrtable: unknown codec")

	errSizeMismatch = errors.New("decompressed size mismatch")
)
