package ledger

import (
	"fmt"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"
	"repairdesk/internal/money"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// AttachRequest asks for one catalog service to be put on an order. A nil Price
// means "capture the current catalog price".
type AttachRequest struct {
	ServiceID snowflake.ID
	Price     *decimal.Decimal
}

// SnapshotLines validates a batch of attach requests against the lines already on
// the order and the catalog as loaded for this batch, and returns the new lines with
// their captured prices. Either every request yields a line or an error is returned
// and nothing is produced. Line IDs are left for the caller to assign.
//
// limit <= 0 disables the services-per-order limit.
func SnapshotLines(
	orderID snowflake.ID,
	existing []model.OrderServiceLine,
	catalog map[snowflake.ID]model.Service,
	requests []AttachRequest,
	limit int,
) ([]model.OrderServiceLine, error) {
	if len(requests) == 0 {
		return nil, apperror.Validation("services", "empty_batch", "at least one service is required")
	}

	attached := make(map[snowflake.ID]struct{}, len(existing))
	for _, line := range existing {
		attached[line.ServiceID] = struct{}{}
	}

	seen := make(map[snowflake.ID]struct{}, len(requests))
	lines := make([]model.OrderServiceLine, 0, len(requests))
	for i, req := range requests {
		field := fmt.Sprintf("services[%d]", i)
		if _, dup := seen[req.ServiceID]; dup {
			return nil, apperror.Validation(field, "duplicate_service_in_batch", fmt.Sprintf("service %d is listed more than once", req.ServiceID))
		}
		seen[req.ServiceID] = struct{}{}

		if _, ok := attached[req.ServiceID]; ok {
			return nil, apperror.Validation(field, "service_already_attached", fmt.Sprintf("service %d is already attached to the order", req.ServiceID))
		}

		svc, ok := catalog[req.ServiceID]
		if !ok {
			return nil, apperror.Referential("service_not_found", fmt.Sprintf("service %d does not exist", req.ServiceID))
		}

		price := svc.Price
		if req.Price != nil {
			if err := money.Validate(field+".price", *req.Price); err != nil {
				return nil, err
			}
			price = *req.Price
		}

		lines = append(lines, model.OrderServiceLine{
			OrderID:       orderID,
			ServiceID:     req.ServiceID,
			CapturedPrice: price,
		})
	}

	if limit > 0 && len(existing)+len(lines) > limit {
		return nil, apperror.Validation("services", "too_many_services",
			fmt.Sprintf("an order can hold at most %d services", limit))
	}

	return lines, nil
}
