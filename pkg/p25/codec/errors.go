package codec

import "errors"

// Decode error sentinels, one per distinct decode failure kind.
var (
	ErrCRC        = errors.New("p25/codec: crc check failed")
	ErrFEC        = errors.New("p25/codec: fec check failed")
	ErrUnknownLCO = errors.New("p25/codec: unknown lco")
	ErrTruncated  = errors.New("p25/codec: truncated frame")
)
