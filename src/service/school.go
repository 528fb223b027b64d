package service

import (
	"context"
	"encoding/xml"

	"github.com/Zillorz/svue-api/src/models"
)

type SchoolInfo struct {
	Name           string      `json:"name"`
	Principal      string      `json:"principal"`
	PrincipalEmail string      `json:"principal_email"`
	Address        string      `json:"address"`
	City           string      `json:"city"`
	State          string      `json:"state"`
	ZipCode        string      `json:"zip_code"`
	PhoneNumber    string      `json:"phone_number"`
	Website        string      `json:"website"`
	Staff          []StaffInfo `json:"staff"`
}

type StaffInfo struct {
	Name     string `json:"name"`
	JobTitle string `json:"job_title"`
	Email    string `json:"email"`
}

// SchoolInfo fetches and flattens the StudentSchoolInfo payload.
func (s *Service) SchoolInfo(ctx context.Context, rec *models.SessionRecord) (*SchoolInfo, error) {
	inner, err := s.Upstream.Call(ctx, "StudentSchoolInfo", "", rec)
	if err != nil {
		return nil, err
	}

	var listing schoolInfoXML
	if err := xml.Unmarshal([]byte(inner), &listing); err != nil {
		return nil, &models.ParsingError{Cause: err}
	}

	staff := make([]StaffInfo, 0, len(listing.StaffLists.StaffList))
	for _, member := range listing.StaffLists.StaffList {
		staff = append(staff, StaffInfo{
			Name:     member.Name,
			JobTitle: member.Title,
			Email:    member.Email,
		})
	}

	return &SchoolInfo{
		Name:           listing.School,
		Principal:      listing.Principal,
		PrincipalEmail: listing.PrincipalEmail,
		Address:        listing.SchoolAddress,
		City:           listing.SchoolCity,
		State:          listing.SchoolState,
		ZipCode:        listing.SchoolZip,
		PhoneNumber:    listing.Phone,
		Website:        listing.URL,
		Staff:          staff,
	}, nil
}

type schoolInfoXML struct {
	XMLName        xml.Name `xml:"StudentSchoolInfoListing"`
	School         string   `xml:"School,attr"`
	Principal      string   `xml:"Principal,attr"`
	PrincipalEmail string   `xml:"PrincipalEmail,attr"`
	SchoolAddress  string   `xml:"SchoolAddress,attr"`
	SchoolCity     string   `xml:"SchoolCity,attr"`
	SchoolState    string   `xml:"SchoolState,attr"`
	SchoolZip      string   `xml:"SchoolZip,attr"`
	Phone          string   `xml:"Phone,attr"`
	URL            string   `xml:"URL,attr"`
	StaffLists     struct {
		StaffList []struct {
			Name  string `xml:"Name,attr"`
			Email string `xml:"EMail,attr"`
			Title string `xml:"Title,attr"`
		} `xml:"StaffList"`
	} `xml:"StaffLists"`
}
