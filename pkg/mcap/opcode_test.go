package mcap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpCode_Classification(t *testing.T) {
	tests := []struct {
		op    OpCode
		name  string
		known bool
	}{
		{OpHeader, "Header", true},
		{OpFooter, "Footer", true},
		{OpSchema, "Schema", true},
		{OpChannel, "Channel", true},
		{OpMessage, "Message", true},
		{OpChunk, "Chunk", true},
		{OpChunkIndex, "ChunkIndex", true},
		{OpAttachment, "Attachment", true},
		{OpStatistics, "Statistics", true},
		{OpMetadata, "Metadata", true},
		{OpMetadataIndex, "MetadataIndex", true},
		{OpSummaryOffset, "SummaryOffset", true},
		{OpSummary, "Summary", true},
		{0x00, "Unknown(0x00)", false},
		{0x0E, "Unknown(0x0e)", false},
		{0x80, "Unknown(0x80)", false},
		{0xFF, "Unknown(0xff)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.op.String())
			assert.Equal(t, tt.known, tt.op.Known())
			if !tt.known {
				assert.Equal(t, "Unknown", tt.op.Kind())
			} else {
				assert.Equal(t, tt.name, tt.op.Kind())
			}
		})
	}
}
