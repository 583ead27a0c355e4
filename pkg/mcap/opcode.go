package mcap

import "fmt"

// OpCode is the first byte of a record preamble. The opcode space is open:
// values without a name are still valid records and classify as unknown.
type OpCode uint8

// Known record opcodes.
const (
	OpHeader        OpCode = 0x01
	OpFooter        OpCode = 0x02
	OpSchema        OpCode = 0x03
	OpChannel       OpCode = 0x04
	OpMessage       OpCode = 0x05
	OpChunk         OpCode = 0x06
	OpChunkIndex    OpCode = 0x07
	OpAttachment    OpCode = 0x08
	OpStatistics    OpCode = 0x09
	OpMetadata      OpCode = 0x0A
	OpMetadataIndex OpCode = 0x0B
	OpSummaryOffset OpCode = 0x0C
	OpSummary       OpCode = 0x0D
)

var opNames = map[OpCode]string{
	OpHeader:        "Header",
	OpFooter:        "Footer",
	OpSchema:        "Schema",
	OpChannel:       "Channel",
	OpMessage:       "Message",
	OpChunk:         "Chunk",
	OpChunkIndex:    "ChunkIndex",
	OpAttachment:    "Attachment",
	OpStatistics:    "Statistics",
	OpMetadata:      "Metadata",
	OpMetadataIndex: "MetadataIndex",
	OpSummaryOffset: "SummaryOffset",
	OpSummary:       "Summary",
}

// Known reports whether op is one of the named record kinds.
func (op OpCode) Known() bool {
	_, ok := opNames[op]
	return ok
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02x)", uint8(op))
}

// Kind returns the record kind name, collapsing all unnamed opcodes into "Unknown".
// It is meant for low-cardinality labels.
func (op OpCode) Kind() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "Unknown"
}
