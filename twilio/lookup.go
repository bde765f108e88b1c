package twilio

import (
	"context"
	"net/url"
	"strings"
)

// PhoneNumberInfo is the Lookup v2 view of a phone number.
type PhoneNumberInfo struct {
	CallingCountryCode   string                `json:"calling_country_code"`
	CountryCode          string                `json:"country_code"`
	PhoneNumber          string                `json:"phone_number"`
	NationalFormat       string                `json:"national_format"`
	Valid                bool                  `json:"valid"`
	ValidationErrors     []string              `json:"validation_errors"`
	LineTypeIntelligence *LineTypeIntelligence `json:"line_type_intelligence"`
}

// LineTypeIntelligence describes the carrier and line type of a number.
// Present only when the line_type_intelligence field was requested.
type LineTypeIntelligence struct {
	CarrierName       string `json:"carrier_name"`
	ErrorCode         *int   `json:"error_code"`
	MobileCountryCode string `json:"mobile_country_code"`
	MobileNetworkCode string `json:"mobile_network_code"`
	// Type is one of landline, mobile, fixedVoip, nonFixedVoip, personal,
	// tollFree, premium, sharedCost, uan, voicemail, pager, unknown.
	Type string `json:"type"`
}

// LookupPhoneNumber queries Lookup v2 for a number in E.164 form. With no
// fields given it requests line_type_intelligence.
func (c *Client) LookupPhoneNumber(ctx context.Context, number string, fields ...string) (*PhoneNumberInfo, error) {
	if len(fields) == 0 {
		fields = []string{"line_type_intelligence"}
	}
	params := url.Values{}
	params.Set("Fields", strings.Join(fields, ","))

	var out PhoneNumberInfo
	if err := c.get(ctx, c.lookupEndpoint("/v2/PhoneNumbers/"+url.PathEscape(number)), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
