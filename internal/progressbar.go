package internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NewEntryBar returns a progress bar for writing an extracted entry of the given size.
//
// The bar renders to os.Stderr so that it never mixes with entry content written to os.Stdout. The entry name is kept
// to its last 30 runes in the description. Options are applied last and may override the writer.
func NewEntryBar(size int64, entry string, options ...progressbar.Option) *progressbar.ProgressBar {
	return newEntryBar(os.Stderr, size, entry, options...)
}

func newEntryBar(w io.Writer, size int64, entry string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(fmt.Sprintf("writing %s", TruncateLeftWithPrefix(entry, 30, "..."))),
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowTotalBytes(true),
			progressbar.OptionThrottle(500 * time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(w, "\n")
			}),
			progressbar.OptionSetWidth(20),
		}, options...)...)
}
