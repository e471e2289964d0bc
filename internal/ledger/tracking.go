package ledger

import "time"

const (
	defaultMerchantLocation = "Merchant Location"
	originHubPhone          = "01712345678"

	centralHubLocation = "Central Distribution Hub"
	opsManagerName     = "Shohoz Ops Manager"
	opsManagerPhone    = "01887654321"
	opsHubPhone        = "01991234567"

	settlementLocation = "Merchant Bank Account"
	accountsAdminName  = "Accounts Admin"
	accountsPhone      = "01000000000"

	StepOrderPlaced = "Order Placed"
)

func orderPlacedStep(m Merchant, at time.Time) TrackingStep {
	loc := m.Address
	if loc == "" {
		loc = defaultMerchantLocation
	}
	return TrackingStep{
		Status:       StepOrderPlaced,
		Description:  "Order received successfully.",
		Location:     loc,
		Timestamp:    at,
		HandlerName:  m.Name,
		HandlerPhone: m.Phone,
		HubPhone:     originHubPhone,
	}
}

func statusChangeStep(s Status, at time.Time) TrackingStep {
	return TrackingStep{
		Status:       string(s),
		Description:  "Status changed: " + string(s),
		Location:     centralHubLocation,
		Timestamp:    at,
		HandlerName:  opsManagerName,
		HandlerPhone: opsManagerPhone,
		HubPhone:     opsHubPhone,
	}
}

func paidStep(at time.Time) TrackingStep {
	return TrackingStep{
		Status:       string(StatusPaid),
		Description:  "Payment settlement completed successfully.",
		Location:     settlementLocation,
		Timestamp:    at,
		HandlerName:  accountsAdminName,
		HandlerPhone: accountsPhone,
		HubPhone:     accountsPhone,
	}
}
