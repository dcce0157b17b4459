package domain

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

type ByteFormat string

const (
	FormatMetric ByteFormat = "metric"
	FormatBinary ByteFormat = "binary"
	FormatBytes  ByteFormat = "bytes"
	FormatGB     ByteFormat = "gb"
	FormatGiB    ByteFormat = "gib"
	FormatMB     ByteFormat = "mb"
	FormatMiB    ByteFormat = "mib"
)

func ParseByteFormat(value string) (ByteFormat, error) {
	format := ByteFormat(strings.ToLower(strings.TrimSpace(value)))
	switch format {
	case FormatMetric, FormatBinary, FormatBytes, FormatGB, FormatGiB, FormatMB, FormatMiB:
		return format, nil
	case "":
		return FormatMetric, nil
	default:
		return "", fmt.Errorf("unknown byte format %q", value)
	}
}

func (format ByteFormat) Display(size int64) string {
	if size < 0 {
		size = 0
	}
	switch format {
	case FormatBinary:
		return humanize.IBytes(uint64(size))
	case FormatBytes:
		return humanize.Comma(size) + " B"
	case FormatGB:
		return fixedUnit(size, humanize.GByte, "GB")
	case FormatGiB:
		return fixedUnit(size, humanize.GiByte, "GiB")
	case FormatMB:
		return fixedUnit(size, humanize.MByte, "MB")
	case FormatMiB:
		return fixedUnit(size, humanize.MiByte, "MiB")
	default:
		return humanize.Bytes(uint64(size))
	}
}

// Width is the column width needed for any value in this format.
func (format ByteFormat) Width() int {
	switch format {
	case FormatBytes:
		return 16
	case FormatGB, FormatGiB, FormatMB, FormatMiB:
		return 12
	default:
		return 10
	}
}

func fixedUnit(size int64, unit uint64, label string) string {
	return fmt.Sprintf("%.2f %s", float64(size)/float64(unit), label)
}
