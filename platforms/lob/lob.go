// Package lob wraps the pieces of the Lob API the marketplace uses:
// address verification for brand-shipped orders and check cutting for
// influencer payouts.
package lob

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	checkEndpoint  = "https://api.lob.com/v1/checks"
	verifyEndpoint = "https://api.lob.com/v1/verify"
)

var (
	ErrAddr  = errors.New("missing address")
	ErrNoKey = errors.New("lob is not configured")
)

type Client struct {
	Key      string
	FromAddr string
	BankAcct string
	Sandbox  bool
}

func New(key, fromAddr, bankAcct string, sandbox bool) *Client {
	return &Client{
		Key:      key,
		FromAddr: fromAddr,
		BankAcct: bankAcct,
		Sandbox:  sandbox,
	}
}

type AddressLoad struct {
	AddressOne string `json:"address_line1"`
	AddressTwo string `json:"address_line2"`
	City       string `json:"address_city"`
	State      string `json:"address_state"`
	Country    string `json:"address_country"`
	Zip        string `json:"address_zip"`
}

type Check struct {
	Id               string `json:"id"`
	Tracking         *Track `json:"tracking"`
	ExpectedDelivery string `json:"expected_delivery_date"`
	ErrorData        *Error `json:"error"`
}

type Track struct {
	Id string `json:"id"`
}

type Verification struct {
	Address   *AddressLoad `json:"address"`
	Message   string       `json:"message"`
	ErrorData *Error       `json:"error"`
}

type Error struct {
	Message string `json:"message"`
}

// CreateCheck mails a payout check to the given address and returns Lob's
// check record.
func (c *Client) CreateCheck(name string, addr *AddressLoad, payout float64) (*Check, error) {
	if c == nil || c.Key == "" {
		return nil, ErrNoKey
	}
	if addr == nil || addr.AddressOne == "" {
		return nil, ErrAddr
	}

	form := url.Values{}
	form.Add("description", "Influencer Payout Check")

	form.Add("to[name]", name)
	form.Add("to[address_line1]", addr.AddressOne)
	form.Add("to[address_line2]", addr.AddressTwo)
	form.Add("to[address_city]", addr.City)
	form.Add("to[address_state]", addr.State)
	form.Add("to[address_zip]", addr.Zip)
	form.Add("to[address_country]", addr.Country)

	form.Add("from", c.FromAddr)
	form.Add("bank_account", c.BankAcct)
	form.Add("amount", strconv.FormatFloat(payout, 'f', 2, 64))

	var check Check
	if err := c.do(checkEndpoint, form, &check); err != nil {
		return nil, err
	}
	if check.ErrorData != nil {
		return nil, errors.New(check.ErrorData.Message)
	}

	return &check, nil
}

// VerifyAddress runs the address through Lob's verification endpoint and
// returns the normalized form.
func (c *Client) VerifyAddress(addr *AddressLoad) (*AddressLoad, error) {
	if c == nil || c.Key == "" {
		return nil, ErrNoKey
	}
	if addr == nil || addr.AddressOne == "" {
		return nil, ErrAddr
	}

	form := url.Values{}
	form.Add("address_line1", addr.AddressOne)
	form.Add("address_line2", addr.AddressTwo)
	form.Add("address_city", addr.City)
	form.Add("address_state", addr.State)
	form.Add("address_zip", addr.Zip)
	form.Add("address_country", addr.Country)

	var verify Verification
	if err := c.do(verifyEndpoint, form, &verify); err != nil {
		return nil, err
	}

	if len(verify.Message) > 0 {
		return nil, errors.New(verify.Message)
	}
	if verify.ErrorData != nil {
		return nil, errors.New(verify.ErrorData.Message)
	}

	return verify.Address, nil
}

func (c *Client) do(endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.Key, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}
