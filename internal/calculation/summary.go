package calculation

import (
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/mathutil"
	"go.uber.org/zap"
)

// ComputeSummary tallies the accessory categories of items and prices them
// from the retail table. The result depends only on items and the table.
func (s *Service) ComputeSummary(items []quote.LineItem) (quote.Summary, error) {
	var sum quote.Summary
	total := 0.0
	for _, item := range items {
		if item.Winder == constants.WinderHeavyDuty {
			sum.HDCount++
		}
		if item.Dual == constants.DualMarker {
			sum.DualCount++
		}
		if item.HasMotor() {
			sum.MotorCount++
		}
		total += mathutil.ValueOr(item.Price)
	}
	sum.DualPairs = dualPairs(sum.DualCount)

	lines := []struct {
		key string
		qty int
		out *float64
	}{
		{constants.ComponentWinder, sum.HDCount, &sum.WinderCostSum},
		{constants.ComponentDual, sum.DualPairs, &sum.DualCostSum},
		{constants.ComponentMotor, sum.MotorCount, &sum.MotorCostSum},
		{constants.ComponentRemote, sum.RemoteQty(), &sum.RemoteCostSum},
		{constants.ComponentCharger, sum.MotorCount, &sum.ChargerCostSum},
		{constants.ComponentCord, sum.MotorCount, &sum.CordCostSum},
	}
	for _, line := range lines {
		unit, err := s.prices.GetComponentPrice(line.key)
		if err != nil {
			return quote.Summary{}, err
		}
		*line.out = mathutil.Round(unit * float64(line.qty))
	}
	sum.TotalSum = mathutil.Round(total)

	s.logger.Debug("summary computed",
		zap.String("op", "calculation.ComputeSummary"),
		zap.Int("items", len(items)),
		zap.Float64("totalSum", sum.TotalSum),
	)
	return sum, nil
}
