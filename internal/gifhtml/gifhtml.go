// Package gifhtml assembles the animation HTML that gets inscribed once
// every frame image is on chain. The page cycles through the frame
// inscriptions client-side, honoring each frame's display duration.
package gifhtml

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ordforge/ordforge/internal/store"
)

// Build renders the minified animation page for the given frames. Each
// frame must already carry its inscription id; the page references
// frames by their on-chain content path.
func Build(title string, frames []store.Frame) string {
	durations := make([]string, len(frames))
	imgs := make([]string, len(frames))
	for i, f := range frames {
		durations[i] = strconv.Itoa(f.Duration)
		imgs[i] = fmt.Sprintf("<img class=grid-item src=/content/%s>", f.Inscription)
	}

	var b strings.Builder
	b.WriteString(`<html lang=en><meta charset=UTF-8><meta content="width=device-width,initial-scale=1"name=viewport><title>`)
	b.WriteString(title)
	b.WriteString(`</title><style>body{display:flex;justify-content:center;align-items:center;height:100vh;margin:0}.grid-item{display:none;max-width:100%;height:auto;object-fit:cover}</style><script>const e=e=>new Promise(t=>setTimeout(t,e));document.addEventListener("DOMContentLoaded",async()=>{const t=document.querySelector(".grid-container").children,n=[`)
	b.WriteString(strings.Join(durations, ","))
	b.WriteString(`];let o=0;for(;;){const s=t.item(o),i=t.item((o||t.length)-1);await e(n[o]||1e3),i.style.setProperty("display","none"),s.style.setProperty("display","block"),o===t.length-1?o=0:o+=1}})</script><body style=margin:0;isolation:isolate><div class=grid-container>`)
	b.WriteString(strings.Join(imgs, "\n"))
	b.WriteString(`</div>    </body></html>`)
	return b.String()
}

// EstimateSize projects the byte size of the animation page for pricing,
// before any frame is inscribed, using placeholder inscription ids and
// durations of the width real values take.
func EstimateSize(frameCount int) int64 {
	frames := make([]store.Frame, frameCount)
	for i := range frames {
		frames[i] = store.Frame{
			Inscription: "tx_idi0",
			Duration:    19999,
		}
	}
	return int64(len(Build("image.gif", frames)))
}

// DataURL wraps the rendered page as a base64 data URL, the form the
// inscription service accepts file content in.
func DataURL(html string) string {
	return "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

// HashFile returns the hex SHA-256 of file content.
func HashFile(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
