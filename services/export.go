package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportService renders stored transcripts as an Excel workbook for staff.
type ExportService struct {
	store *TranscriptStore
}

func NewExportService(store *TranscriptStore) *ExportService {
	return &ExportService{store: store}
}

// ExportMessagesXLSX builds a workbook of the most recent messages and
// returns it as bytes ready to stream to the client.
func (s *ExportService) ExportMessagesXLSX(ctx context.Context, limit int64) (*bytes.Buffer, int, error) {
	messages, err := s.store.ListMessages(ctx, limit)
	if err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Messages"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, 0, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Conversation ID", "Role", "Content", "Educational", "Timestamp"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, msg := range messages {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), msg.ConversationID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), msg.Role)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), msg.Content)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), msg.Educational)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), msg.Timestamp.Format("2006-01-02 15:04:05"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, err
	}
	return buf, len(messages), nil
}
