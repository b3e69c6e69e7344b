// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/mapqdiff/encoding/bamprovider"
	"github.com/grailbio/mapqdiff/mapqdiff"
)

var (
	formatFlag = flag.String("format", "", `Input format: "bam", "sam" or "sam.gz". By default it is guessed from the
path, and paths without a known extension (including "-") are read as BAM.`)
)

const usage = `Usage: bio-mapq-diff [flags] <bam> <prefix1> <refs1> <prefix2> <refs2>
Arg1: BAM file sorted by name
Arg2: Column header prefix for set1
Arg3: Set1 of reference names (comma separated)
Arg4: Column header prefix for set2
Arg5: Set2 of reference names (comma separated)
`

// stderrOutputter writes log messages to w as "<LEVEL>: <message>" lines.
type stderrOutputter struct {
	mu    sync.Mutex
	w     io.Writer
	level log.Level
}

func (o *stderrOutputter) Level() log.Level { return o.level }

func (o *stderrOutputter) Output(calldepth int, level log.Level, s string) error {
	if level > o.level {
		return nil
	}
	prefix := "INFO: "
	if level == log.Error {
		prefix = "ERROR: "
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := io.WriteString(o.w, prefix+strings.TrimSuffix(s, "\n")+"\n")
	return err
}

// parseArgs converts the five positional arguments into the input path and
// run options.
func parseArgs(args []string) (string, mapqdiff.Opts, error) {
	if len(args) != 5 {
		return "", mapqdiff.Opts{}, fmt.Errorf("#arguments must be 5. observed: %d", len(args))
	}
	return args[0], mapqdiff.Opts{
		Set1Prefix: args[1],
		Set1Refs:   mapqdiff.ParseRefNames(args[2]),
		Set2Prefix: args[3],
		Set2Refs:   mapqdiff.ParseRefNames(args[4]),
	}, nil
}

func main() {
	flag.Usage = func() {
		os.Stderr.WriteString(usage)
		flag.PrintDefaults()
	}
	shutdown := grail.Init()
	defer shutdown()

	log.SetOutputter(&stderrOutputter{w: os.Stderr, level: log.Info})

	path, opts, err := parseArgs(flag.Args())
	if err != nil {
		flag.Usage()
		log.Fatalf("%v", err)
	}
	fileType := bamprovider.Unknown
	if *formatFlag != "" {
		if fileType = bamprovider.ParseFileType(*formatFlag); fileType == bamprovider.Unknown {
			log.Fatalf("unknown input format %q", *formatFlag)
		}
	}
	log.Debug.Printf("%s: set1 %s=%v, set2 %s=%v", path, opts.Set1Prefix, opts.Set1Refs, opts.Set2Prefix, opts.Set2Refs)

	provider := bamprovider.NewProvider(path, bamprovider.ProviderOpts{FileType: fileType})
	if _, err := mapqdiff.Run(vcontext.Background(), provider, opts, os.Stdout); err != nil {
		log.Fatalf("%s: %v", path, err)
	}
}
