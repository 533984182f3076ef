package renderer

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Stats counts the work done by a render run. Counters are updated
// atomically by the render goroutines.
type Stats struct {
	RaysTraced       uint64
	ShadowRays       uint64
	ConnectionsTried uint64
	ConnectionsMade  uint64
	RowsDone         uint64

	Elapsed time.Duration
}

func (st *Stats) addRay()       { atomic.AddUint64(&st.RaysTraced, 1) }
func (st *Stats) addShadowRay() { atomic.AddUint64(&st.ShadowRays, 1) }
func (st *Stats) addConnTried() { atomic.AddUint64(&st.ConnectionsTried, 1) }
func (st *Stats) addConnMade()  { atomic.AddUint64(&st.ConnectionsMade, 1) }
func (st *Stats) addRow()       { atomic.AddUint64(&st.RowsDone, 1) }

// Write renders the statistics as a table.
func (st *Stats) Write(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoFormatHeaders(false)
	table.Append([]string{"Rays traced", fmt.Sprintf("%d", atomic.LoadUint64(&st.RaysTraced))})
	table.Append([]string{"Shadow rays", fmt.Sprintf("%d", atomic.LoadUint64(&st.ShadowRays))})
	table.Append([]string{"Connections tried", fmt.Sprintf("%d", atomic.LoadUint64(&st.ConnectionsTried))})
	table.Append([]string{"Connections made", fmt.Sprintf("%d", atomic.LoadUint64(&st.ConnectionsMade))})
	table.Append([]string{"Rows rendered", fmt.Sprintf("%d", atomic.LoadUint64(&st.RowsDone))})
	table.Append([]string{"Wall time", st.Elapsed.Round(time.Millisecond).String()})
	table.Render()
}
