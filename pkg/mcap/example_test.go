package mcap_test

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/ssargent/mcapidx/pkg/mcap"
)

// ExampleWalker demonstrates walking every record of a small file
func ExampleWalker() {
	var file bytes.Buffer
	w := mcap.NewWriter(&file)
	_ = w.WriteMagic()
	_, _ = w.WriteHeader(mcap.Header{Profile: "ros2", Library: "example"}, nil)
	_, _ = w.WriteRecord(mcap.OpSchema, []byte("schema"))
	_, _ = w.WriteRecord(mcap.OpMessage, []byte("message"))
	_ = w.WriteFooter()

	if err := mcap.ReadMagic(&file); err != nil {
		log.Fatal(err)
	}
	walker := mcap.NewWalker(&file)

	rec, err := walker.Next()
	if err != nil {
		log.Fatal(err)
	}
	header, err := walker.ReadHeader(rec)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("profile=%s library=%s\n", header.Profile, header.Library)

	for {
		rec, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-8s offset=%d body_len=%d\n", rec.Op, rec.Offset, rec.BodyLen)
		if err := walker.SkipBody(rec); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println("terminator:", walker.Terminator())

	// Output:
	// profile=ros2 library=example
	// Schema   offset=28 body_len=6
	// Message  offset=43 body_len=7
	// terminator: footer
}
