package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/auditkit/auditkit/pkg/types"
)

// CollectCrUX extracts real-user (field) Core Web Vitals from the
// loadingExperience block that PageSpeed Insights embeds in every
// response — no separate API or key needed. Origins without a recorded
// field population (small or new sites) report StatusSkipped.
func (c *Client) CollectCrUX(ctx context.Context, pageURL string) types.Result[types.CrUXData] {
	start := time.Now()

	psi, err := c.fetchPSI(ctx, pageURL)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return skipResult[types.CrUXData](fmt.Sprintf("PSI: %d", se.Code), start)
		}
		slog.Warn("collector: crux fetch failed", "url", pageURL, "err", err)
		return errResult[types.CrUXData](err.Error(), start)
	}

	data := parseFieldData(psi.LoadingExperience)
	if data == nil {
		return skipResult[types.CrUXData]("insufficient real-user data for this origin", start)
	}

	return okResult(data, start)
}
