package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/swiftsale/label-annotator/dto"
	"github.com/swiftsale/label-annotator/utils"
)

// BinSource is the read-only projection of the bin-assignment store.
type BinSource interface {
	BinMap(ctx context.Context) (map[string]int, error)
}

// MailingSink receives completed orders as mailing-list upserts.
type MailingSink interface {
	AddOrUpdate(ctx context.Context, entry *dto.MailingListEntry) error
}

// LabelService drives the label-reconciliation pipeline: classify pages,
// recover buyer identity and address on order boundaries, accumulate
// subtotals across continuation pages, stamp every page, and flush completed
// orders to the mailing list.
type LabelService struct {
	bins      BinSource
	mailing   MailingSink
	pdf       PDFProcessor
	annotator *Annotator
}

func NewLabelService(bins BinSource, mailing MailingSink, pdf PDFProcessor, annotator *Annotator) *LabelService {
	return &LabelService{
		bins:      bins,
		mailing:   mailing,
		pdf:       pdf,
		annotator: annotator,
	}
}

// pendingOrder tracks the buyer whose order is currently open. Continuation
// pages carry no identity of their own; everything hangs off the most recent
// boundary page.
type pendingOrder struct {
	username  string
	firstName string
	address   *dto.Address
	spent     float64
	pageIndex int
	isPickup  bool
}

// AnnotateLabels runs the pipeline over the document at inputPath using the
// service's default geometry and writes the annotated copy to outputPath.
func (s *LabelService) AnnotateLabels(ctx context.Context, inputPath, outputPath string) (*dto.AnnotateResult, error) {
	return s.annotateWith(ctx, inputPath, outputPath, s.annotator)
}

// AnnotateLabelsWithGeometry is AnnotateLabels with caller-supplied stamp
// geometry, for label layouts that need different offsets.
func (s *LabelService) AnnotateLabelsWithGeometry(ctx context.Context, inputPath, outputPath string, geo StampGeometry) (*dto.AnnotateResult, error) {
	return s.annotateWith(ctx, inputPath, outputPath, NewAnnotator(geo))
}

func (s *LabelService) annotateWith(ctx context.Context, inputPath, outputPath string, annotator *Annotator) (*dto.AnnotateResult, error) {
	pdfData, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read label pdf: %w", err)
	}

	binMap, err := s.bins.BinMap(ctx)
	if err != nil {
		return nil, err
	}

	pageTexts, err := s.pdf.ExtractPageTexts(pdfData)
	if err != nil {
		return nil, err
	}
	if count, err := s.pdf.PageCount(pdfData); err == nil && count != len(pageTexts) {
		log.Printf("Extracted %d page texts but document has %d pages", len(pageTexts), count)
	}

	stamps, skipped, flushedEntries, err := s.reconcilePages(ctx, pageTexts, binMap)
	if err != nil {
		return nil, err
	}

	// Annotated pages are buffered and written once, so a failed run never
	// leaves a half-written output file behind.
	var buf bytes.Buffer
	if err := annotator.Apply(pdfData, stamps, &buf); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write annotated pdf: %w", err)
	}

	log.Printf("Annotated %d pages (%d skipped, %d mailing entries)",
		len(pageTexts), len(skipped), flushedEntries)

	return &dto.AnnotateResult{
		TotalPages:     len(pageTexts),
		MailingEntries: flushedEntries,
		SkippedPages:   skipped,
		OutputPath:     outputPath,
	}, nil
}

// reconcilePages is the per-page state machine. It returns a stamp for every
// page, skip records for boundary pages that could not be fully processed,
// and the number of mailing entries flushed.
func (s *LabelService) reconcilePages(ctx context.Context, pageTexts []string, binMap map[string]int) (map[int]PageStamp, []dto.SkippedPage, int, error) {
	stamps := make(map[int]PageStamp, len(pageTexts))
	var skipped []dto.SkippedPage

	var current *pendingOrder
	flushed := make(map[string]bool)
	flushCount := 0

	// flush closes out the open order. The flushed set guards against a
	// second upsert for the same buyer when end-of-document flushing runs
	// after a mid-document flush already happened.
	flush := func() error {
		if current == nil || flushed[current.username] {
			return nil
		}
		entry := mailingEntryFromOrder(current)
		if err := s.mailing.AddOrUpdate(ctx, entry); err != nil {
			return fmt.Errorf("save mailing entry for %s: %w", current.username, err)
		}
		flushed[current.username] = true
		flushCount++
		return nil
	}

	for i, pageText := range pageTexts {
		isPickup := utils.IsPickupPage(pageText)
		isBoundary := isPickup || utils.IsPackingSlip(pageText)
		amount := utils.ExtractSubtotal(pageText)
		log.Printf("Page %d subtotal: $%.2f", i+1, amount)

		if isBoundary {
			if err := flush(); err != nil {
				return nil, nil, 0, err
			}
			// Dropping the previous order resets the running total, so a
			// new buyer can never inherit leaked amounts.
			current = nil

			identity := utils.ExtractIdentity(pageText)
			switch {
			case !identity.Identified():
				skipped = append(skipped, dto.SkippedPage{PageIndex: i, Reason: dto.SkipNoUsername})
			default:
				address := utils.ParseAddressBlock(pageText)
				if address == nil {
					log.Printf("Page %d: address parse failed for %s", i+1, identity.Username)
					skipped = append(skipped, dto.SkippedPage{PageIndex: i, Reason: dto.SkipNoAddressData})
				} else {
					current = &pendingOrder{
						username:  identity.Username,
						firstName: identity.FirstName,
						address:   address,
						spent:     amount,
						pageIndex: i,
						isPickup:  isPickup,
					}
				}
			}
		} else if current != nil {
			current.spent += amount
		}

		stamp := PageStamp{}
		if current != nil {
			if bin, ok := binMap[current.username]; ok {
				stamp = PageStamp{
					HasBin:    true,
					BinNumber: bin,
					IsPickup:  current.isPickup,
					FirstName: current.firstName,
				}
			} else if isBoundary {
				// Not an error: giveaway and flash-sale buyers are not
				// bin-tracked. Recorded once per order, on its boundary page.
				skipped = append(skipped, dto.SkippedPage{PageIndex: i, Reason: current.username})
			}
		}
		stamps[i+1] = stamp
	}

	if err := flush(); err != nil {
		return nil, nil, 0, err
	}

	return stamps, skipped, flushCount, nil
}

func mailingEntryFromOrder(order *pendingOrder) *dto.MailingListEntry {
	addressLine2 := order.address.AddressLine2
	if order.isPickup {
		addressLine2 = "PICK UP"
	}
	return &dto.MailingListEntry{
		FullName:     order.address.FullName,
		Username:     order.username,
		Email:        "",
		AddressLine1: order.address.AddressLine1,
		AddressLine2: addressLine2,
		City:         order.address.City,
		State:        order.address.State,
		ZipCode:      order.address.ZipCode,
		Country:      order.address.Country,
		OrderDate:    time.Now().Format("2006-01-02"),
		OrderID:      fmt.Sprintf("PG%03d", order.pageIndex),
		Spent:        order.spent,
	}
}
