package service

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"strings"

	"github.com/Zillorz/svue-api/src/models"
)

// StudentInfo is the flattened student record.
type StudentInfo struct {
	Name              string    `json:"name"`
	ID                string    `json:"id"`
	Gender            string    `json:"gender"`
	Grade             string    `json:"grade"`
	Address           string    `json:"address"`
	BirthDate         string    `json:"birth_date"`
	Email             string    `json:"email"`
	PhoneNumber       string    `json:"phone_number"`
	EmergencyContacts []Contact `json:"emergency_contacts"`
	Physician         Doctor    `json:"physician"`
	Dentist           Doctor    `json:"dentist"`
	School            string    `json:"school"`
}

type Contact struct {
	Name         string   `json:"name"`
	Relation     string   `json:"relation"`
	PhoneNumbers []string `json:"phone_numbers"`
}

type Doctor struct {
	Name        string `json:"name"`
	Workplace   string `json:"workplace"`
	PhoneNumber string `json:"phone_number"`
}

// StudentInfo fetches the StudentInfo payload and returns both the
// flattened record and the embedded photo. The upstream method carries
// them together, so the /student and /photo endpoints share one call.
func (s *Service) StudentInfo(ctx context.Context, rec *models.SessionRecord) (*StudentInfo, []byte, error) {
	inner, err := s.Upstream.Call(ctx, "StudentInfo", "", rec)
	if err != nil {
		return nil, nil, err
	}

	var si studentInfoXML
	if err := xml.Unmarshal([]byte(inner), &si); err != nil {
		return nil, nil, &models.ParsingError{Cause: err}
	}

	photo, err := base64.StdEncoding.DecodeString(strings.TrimSpace(si.Photo))
	if err != nil {
		return nil, nil, &models.ParsingError{Cause: err}
	}

	contacts := make([]Contact, 0, len(si.EmergencyContacts.EmergencyContact))
	for _, ec := range si.EmergencyContacts.EmergencyContact {
		contacts = append(contacts, Contact{
			Name:         ec.Name,
			Relation:     ec.Relationship,
			PhoneNumbers: phoneNumbers(ec),
		})
	}

	info := &StudentInfo{
		Name:      si.FormattedName,
		ID:        si.PermID,
		Gender:    si.Gender,
		Grade:     si.Grade,
		Address:   strings.ReplaceAll(si.Address, "<br>", "\n"),
		BirthDate: si.BirthDate,
		Email:     si.Email,

		PhoneNumber:       si.Phone,
		EmergencyContacts: contacts,
		Physician: Doctor{
			Name:        si.Physician.Name,
			Workplace:   si.Physician.Hospital,
			PhoneNumber: si.Physician.Phone,
		},
		Dentist: Doctor{
			Name:        si.Dentist.Name,
			Workplace:   si.Dentist.Office,
			PhoneNumber: si.Dentist.Phone,
		},
		School: si.CurrentSchool,
	}
	return info, photo, nil
}

func phoneNumbers(ec emergencyContactXML) []string {
	numbers := make([]string, 0, 4)
	for _, n := range []string{ec.MobilePhone, ec.HomePhone, ec.WorkPhone, ec.OtherPhone} {
		if n != "" {
			numbers = append(numbers, n)
		}
	}
	return numbers
}

type studentInfoXML struct {
	XMLName           xml.Name `xml:"StudentInfo"`
	FormattedName     string   `xml:"FormattedName"`
	PermID            string   `xml:"PermID"`
	Gender            string   `xml:"Gender"`
	Grade             string   `xml:"Grade"`
	Address           string   `xml:"Address"`
	BirthDate         string   `xml:"BirthDate"`
	Email             string   `xml:"EMail"`
	Phone             string   `xml:"Phone"`
	CurrentSchool     string   `xml:"CurrentSchool"`
	Photo             string   `xml:"Photo"`
	EmergencyContacts struct {
		EmergencyContact []emergencyContactXML `xml:"EmergencyContact"`
	} `xml:"EmergencyContacts"`
	Physician struct {
		Name     string `xml:"Name,attr"`
		Hospital string `xml:"Hospital,attr"`
		Phone    string `xml:"Phone,attr"`
	} `xml:"Physician"`
	Dentist struct {
		Name   string `xml:"Name,attr"`
		Office string `xml:"Office,attr"`
		Phone  string `xml:"Phone,attr"`
	} `xml:"Dentist"`
}

type emergencyContactXML struct {
	Name         string `xml:"Name,attr"`
	Relationship string `xml:"Relationship,attr"`
	HomePhone    string `xml:"HomePhone,attr"`
	WorkPhone    string `xml:"WorkPhone,attr"`
	OtherPhone   string `xml:"OtherPhone,attr"`
	MobilePhone  string `xml:"MobilePhone,attr"`
}
