// Package soap implements the upstream wire protocol: serializing method
// calls into PXPWebServices SOAP envelopes and decoding the response
// envelope. The inner result payload is itself XML and is decoded again by
// each transformer; the two stages are deliberately independent.
package soap

import (
	"encoding/xml"
	"strings"

	"github.com/Zillorz/svue-api/src/models"
)

const (
	xmlnsSoap = "http://schemas.xmlsoap.org/soap/envelope/"
	xmlnsXSI  = "http://www.w3.org/2001/XMLSchema-instance"
	xmlnsXSD  = "http://www.w3.org/2001/XMLSchema"

	xmlnsEdupoint = "http://edupoint.com/webservices/"
)

// errorMarker is how upstream application errors are sniffed: the literal
// attribute assignment inside the (escaped) inner payload. Parsing is only
// attempted after this predicate matches. Fragile by nature; kept isolated
// so strict schema detection could replace it without touching the caller.
const errorMarker = "ERROR_MESSAGE="

// ProcessWebServiceRequest is the body of every upstream call.
type ProcessWebServiceRequest struct {
	XMLNS                string `xml:"xmlns,attr"`
	UserID               string `xml:"userID,omitempty"`
	Password             string `xml:"password,omitempty"`
	SkipLoginLog         string `xml:"skipLoginLog"`
	Parent               string `xml:"parent"`
	WebServiceHandleName string `xml:"webServiceHandleName"`
	MethodName           string `xml:"methodName"`
	ParamStr             string `xml:"paramStr"`
}

// NewRequest fills in the fixed PXPWebServices fields around a method name
// and its parameter fragment. The fragment is embedded verbatim inside the
// Parms wrapper; upstream is trusted to accept it.
func NewRequest(rec *models.SessionRecord, methodName, params string) ProcessWebServiceRequest {
	return ProcessWebServiceRequest{
		XMLNS:                xmlnsEdupoint,
		UserID:               rec.Username,
		Password:             rec.Password,
		SkipLoginLog:         "1",
		Parent:               "0",
		WebServiceHandleName: "PXPWebServices",
		MethodName:           methodName,
		ParamStr:             "<Parms><ChildIntID>0</ChildIntID>" + params + "</Parms>",
	}
}

type requestEnvelope struct {
	XMLName   xml.Name    `xml:"soap:Envelope"`
	XmlnsXSI  string      `xml:"xmlns:xsi,attr"`
	XmlnsXSD  string      `xml:"xmlns:xsd,attr"`
	XmlnsSoap string      `xml:"xmlns:soap,attr"`
	Body      requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Request ProcessWebServiceRequest `xml:"ProcessWebServiceRequest"`
}

// Encode serializes the request into a complete SOAP 1.1 document.
func Encode(req ProcessWebServiceRequest) ([]byte, error) {
	env := requestEnvelope{
		XmlnsXSI:  xmlnsXSI,
		XmlnsXSD:  xmlnsXSD,
		XmlnsSoap: xmlnsSoap,
		Body:      requestBody{Request: req},
	}
	body, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result string `xml:"ProcessWebServiceRequestResult"`
		} `xml:"ProcessWebServiceRequestResponse"`
	} `xml:"Body"`
}

// Decode strips the bogus soap: prefix and parses the response envelope,
// returning the inner result string (itself XML, escaped on the wire).
// The prefix strip is required: upstream declares one namespace prefix and
// emits another, so the document does not parse as delivered.
func Decode(raw string) (string, error) {
	cleaned := strings.ReplaceAll(raw, "soap:", "")

	var env responseEnvelope
	if err := xml.Unmarshal([]byte(cleaned), &env); err != nil {
		return "", err
	}
	return env.Body.Response.Result, nil
}

// RTError is the upstream application-error envelope.
type RTError struct {
	XMLName      xml.Name `xml:"RT_ERROR"`
	ErrorMessage string   `xml:"ERROR_MESSAGE,attr"`
}

// LooksLikeError reports whether a raw response body carries an upstream
// error envelope.
func LooksLikeError(raw string) bool {
	return strings.Contains(raw, errorMarker)
}

// DecodeError parses the inner result string as an RT_ERROR envelope.
func DecodeError(inner string) (RTError, error) {
	var rt RTError
	err := xml.Unmarshal([]byte(inner), &rt)
	return rt, err
}
