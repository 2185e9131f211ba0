package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aoqbot/internal/domain"
	"aoqbot/internal/models"

	"github.com/fumiama/go-docx"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"
)

const wordQRSize = 384

// WordExporter собирает Word-документ со списком специалистов и их
// QR-кодами — раздаточный материал для размещения в окнах приема.
type WordExporter struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewWordExporter(repo domain.Repository, path string, logger *zerolog.Logger) *WordExporter {
	return &WordExporter{
		repo:   repo,
		path:   path,
		logger: logger,
	}
}

// Export выгружает специалистов организации (или всех, если organization
// пустая) в docx и возвращает путь к файлу.
func (e *WordExporter) Export(ctx context.Context, organization string) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	var specialists []*models.Specialist
	var err error
	if organization == "" {
		specialists, err = e.repo.GetAllSpecialists(ctx)
	} else {
		specialists, err = e.repo.GetSpecialistsByOrganization(ctx, organization)
	}
	if err != nil {
		return "", fmt.Errorf("error getting specialists: %v", err)
	}

	// Временные PNG для вставки в документ
	tmpDir, err := os.MkdirTemp("", "aoq_qr")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph()
	title.AddText("Оцените работу специалиста").Size("36").Bold()

	for n, sp := range specialists {
		para := doc.AddParagraph()
		para.AddText(sp.Fullname).Size("28").Bold()

		details := doc.AddParagraph()
		details.AddText(fmt.Sprintf("%s, %s", sp.Organization, sp.Position)).Size("24")
		if sp.Department != "" {
			doc.AddParagraph().AddText(sp.Department).Size("24")
		}

		if sp.Link != "" {
			png, err := qrcode.Encode(sp.Link, qrcode.Medium, wordQRSize)
			if err != nil {
				return "", fmt.Errorf("error encoding qr for %s: %v", sp.Fullname, err)
			}
			imgPath := filepath.Join(tmpDir, fmt.Sprintf("qr_%d.png", n))
			if err := os.WriteFile(imgPath, png, 0o644); err != nil {
				return "", err
			}
			if _, err := doc.AddParagraph().AddInlineDrawingFrom(imgPath); err != nil {
				return "", fmt.Errorf("error embedding qr: %v", err)
			}
		}

		doc.AddParagraph() // отступ между специалистами
	}

	fileName := fmt.Sprintf("specialists_%s.docx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := doc.WriteTo(f); err != nil {
		return "", fmt.Errorf("error saving document: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("specialists", len(specialists)).Msg("Word file created")
	return filePath, nil
}
