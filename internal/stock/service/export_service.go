package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService xlsx exports for reporting
type ExportService struct {
	fournisseurRepo *repository.FournisseurRepository
	commandeRepo    *repository.CommandeRepository
}

func NewExportService(fournisseurRepo *repository.FournisseurRepository, commandeRepo *repository.CommandeRepository) *ExportService {
	return &ExportService{fournisseurRepo: fournisseurRepo, commandeRepo: commandeRepo}
}

var commandesExportHeaders = []string{
	"Code commande", "Statut", "Date prévue", "Date livraison",
	"Produit", "Marque", "Quantité", "Créée le",
}

// ExportCommandesFournisseur order history of one supplier, one row per
// order line
func (s *ExportService) ExportCommandesFournisseur(ctx context.Context, fournisseurID string) (*excelize.File, string, error) {
	fournisseur, err := s.fournisseurRepo.FindByID(ctx, fournisseurID)
	if err != nil {
		return nil, "", err
	}

	commandes, err := s.commandeRepo.FindByFournisseur(ctx, fournisseurID)
	if err != nil {
		return nil, "", fmt.Errorf("chargement des commandes: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Commandes"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range commandesExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	formatDate := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	}

	row := 2
	for _, cmd := range commandes {
		for _, ligne := range cmd.Lignes {
			nom, marque := "", ""
			if ligne.Produit != nil {
				nom = ligne.Produit.Nom
				marque = ligne.Produit.Marque
			}
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), cmd.Code)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), cmd.Statut)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), formatDate(cmd.DatePrevue))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), formatDate(cmd.DateLivraison))
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), nom)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), marque)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), ligne.Quantite)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), cmd.CreatedAt.Format("2006-01-02"))
			row++
		}
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("%d commandes", len(commandes)))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), summaryStyle)

	colWidths := []float64{16, 12, 12, 12, 24, 16, 10, 12}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	safeNom := strings.ReplaceAll(fournisseur.Nom, " ", "_")
	filename := fmt.Sprintf("commandes_%s_%s.xlsx", safeNom, time.Now().Format("2006-01-02"))
	return f, filename, nil
}
