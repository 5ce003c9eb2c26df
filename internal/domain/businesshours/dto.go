package businesshours

// UpsertDayRequest for PUT /business-hours/{weekday}
type UpsertDayRequest struct {
	OpenMinutes  int  `json:"open_minutes" validate:"gte=0,lte=1439"`
	CloseMinutes int  `json:"close_minutes" validate:"gte=0,lte=1439"`
	Closed       bool `json:"closed"`
}
