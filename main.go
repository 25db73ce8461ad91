// Tracklane lays out scheduled timeslots as date buckets and tracks.
package main

import (
	"fmt"
	"os"

	"github.com/upec/tracklane/cmd"
	"github.com/upec/tracklane/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Warn stopping profiler:", stopErr)
	}
	iocache.CloseStores()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
