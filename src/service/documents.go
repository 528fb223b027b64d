package service

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/Zillorz/svue-api/src/models"
)

// Document is one entry of the student's document list.
type Document struct {
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	Date     string `json:"date"`
	GU       string `json:"gu"`
}

// DocumentData is a fetched document with its decoded contents.
type DocumentData struct {
	FileName string
	FileData []byte
}

// ListDocuments fetches the student's document index.
func (s *Service) ListDocuments(ctx context.Context, rec *models.SessionRecord) ([]Document, error) {
	inner, err := s.Upstream.Call(ctx, "GetStudentDocumentInitialData", "", rec)
	if err != nil {
		return nil, err
	}

	var docs studentDocumentsXML
	if err := xml.Unmarshal([]byte(inner), &docs); err != nil {
		return nil, &models.ParsingError{Cause: err}
	}

	out := make([]Document, 0, len(docs.StudentDocumentDatas.StudentDocumentData))
	for _, d := range docs.StudentDocumentDatas.StudentDocumentData {
		out = append(out, Document{
			Name:     d.DocumentComment,
			FileName: d.DocumentFileName,
			Date:     d.DocumentDate,
			GU:       d.DocumentGU,
		})
	}
	return out, nil
}

// GetDocument fetches a single attached document by its GU.
func (s *Service) GetDocument(ctx context.Context, rec *models.SessionRecord, gu string) (*DocumentData, error) {
	params := fmt.Sprintf("<DocumentGU>%s</DocumentGU>", gu)
	inner, err := s.Upstream.Call(ctx, "GetContentOfAttachedDoc", params, rec)
	if err != nil {
		return nil, err
	}

	var doc attachedDocumentXML
	if err := xml.Unmarshal([]byte(inner), &doc); err != nil {
		return nil, &models.ParsingError{Cause: err}
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(doc.DocumentDatas.DocumentData.Base64Code))
	if err != nil {
		return nil, &models.ParsingError{Cause: err}
	}

	return &DocumentData{
		FileName: doc.DocumentDatas.DocumentData.FileName,
		FileData: data,
	}, nil
}

type studentDocumentsXML struct {
	XMLName              xml.Name `xml:"StudentDocuments"`
	StudentDocumentDatas struct {
		StudentDocumentData []struct {
			DocumentGU       string `xml:"DocumentGU,attr"`
			DocumentFileName string `xml:"DocumentFileName,attr"`
			DocumentDate     string `xml:"DocumentDate,attr"`
			DocumentComment  string `xml:"DocumentComment,attr"`
		} `xml:"StudentDocumentData"`
	} `xml:"StudentDocumentDatas"`
}

type attachedDocumentXML struct {
	XMLName       xml.Name `xml:"StudentAttachedDocumentData"`
	DocumentDatas struct {
		DocumentData struct {
			FileName   string `xml:"FileName,attr"`
			Base64Code string `xml:"Base64Code"`
		} `xml:"DocumentData"`
	} `xml:"DocumentDatas"`
}
