package pdf

import (
	"bytes"
	_ "embed"
	"fmt"
	stdimage "image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
	"go.uber.org/zap"
)

const (
	receiptFontFamily = "receipt"
	bodyTextSize      = 12
	labelTextSize     = 10
	lineHeight        = 7
)

//go:embed fonts/unifont_jp.ttf
var defaultFont []byte

// Renderer draws the one page receipt. Every string goes through a UTF-8 TTF:
// Issuer.FontPath when set, otherwise the embedded GNU Unifont JP.
type Renderer struct {
	issuer config.Issuer
	loc    *time.Location
	fonts  []*entity.CustomFont
	log    *zap.Logger
}

func NewRenderer(issuer config.Issuer, loc *time.Location, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{issuer: issuer, loc: loc, log: log}

	repo := repository.New().
		AddUTF8FontFromBytes(receiptFontFamily, fontstyle.Normal, defaultFont).
		AddUTF8FontFromBytes(receiptFontFamily, fontstyle.Bold, defaultFont)
	source := "embedded"
	if path := strings.TrimSpace(issuer.FontPath); path != "" {
		repo = repository.New().
			AddUTF8Font(receiptFontFamily, fontstyle.Normal, path).
			AddUTF8Font(receiptFontFamily, fontstyle.Bold, path)
		source = path
	}
	fonts, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load receipt font %q: %w", source, err)
	}
	if len(fonts) == 0 {
		return nil, fmt.Errorf("load receipt font %q: no font loaded", source)
	}
	r.fonts = fonts
	return r, nil
}

func (r *Renderer) Render(doc domain.ReceiptDocument) ([]byte, error) {
	cfg := mconfig.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(18).
		WithTopMargin(15).
		WithRightMargin(18).
		WithCustomFonts(r.fonts).
		WithDefaultFont(&props.Font{Family: receiptFontFamily, Size: bodyTextSize}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12, col.New(12).Add(
		text.New("寄付受領書", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
	))
	m.AddRow(4, line.NewCol(12))

	r.addLines(m,
		"",
		"証明書番号："+doc.CertificateNo,
		"",
		doc.DonorName+" 様",
		"住所："+doc.DonorAddress,
		"",
		"寄附金額："+doc.Amount+" 円",
		"支払方法："+string(doc.PaymentMethod),
		"日付："+FormatDonatedAt(doc.DonatedAt, r.loc),
		"",
		"受け入れ団体："+r.issuer.Name,
		"所在地："+r.issuer.Address,
	)

	r.addIssuerAssets(m)

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return document.GetBytes(), nil
}

// FormatDonatedAt renders the timestamp in the receipt zone, e.g.
// 2025年06月01日 19:00:00 JST.
func FormatDonatedAt(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return t.In(loc).Format("2006年01月02日 15:04:05") + " JST"
}

func (r *Renderer) addLines(m core.Maroto, lines ...string) {
	for _, l := range lines {
		m.AddRow(lineHeight, col.New(12).Add(
			text.New(l, props.Text{Size: bodyTextSize, Align: align.Left}),
		))
	}
}

// addIssuerAssets draws the seal and signature when the files exist and decode.
// A broken asset is logged and skipped so it never blocks issuance.
func (r *Renderer) addIssuerAssets(m core.Maroto) {
	seal, sealExt, sealOK := r.loadImage(r.issuer.SealImagePath)
	signature, sigExt, sigOK := r.loadImage(r.issuer.SignatureImagePath)
	if !sealOK && !sigOK {
		return
	}

	m.AddRow(20)

	labels := make([]core.Col, 0, 2)
	images := make([]core.Col, 0, 2)
	if sealOK {
		labels = append(labels, col.New(4).Add(text.New("略印", props.Text{Size: labelTextSize})))
		images = append(images, col.New(4).Add(image.NewFromBytes(seal, sealExt, props.Rect{Percent: 100})))
	} else {
		labels = append(labels, col.New(4))
		images = append(images, col.New(4))
	}
	if sigOK {
		labels = append(labels, col.New(8).Add(text.New("代表者署名", props.Text{Size: labelTextSize})))
		images = append(images, col.New(8).Add(image.NewFromBytes(signature, sigExt, props.Rect{Percent: 100})))
	}

	m.AddRow(8, labels...)
	m.AddRow(26, images...)
}

func (r *Renderer) loadImage(path string) ([]byte, extension.Type, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Warn("receipt image unreadable", zap.String("path", path), zap.Error(err))
		}
		return nil, "", false
	}

	_, format, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		r.log.Warn("receipt image skipped", zap.String("path", path), zap.Error(err))
		return nil, "", false
	}
	switch format {
	case "png":
		return data, extension.Png, true
	case "jpeg":
		return data, extension.Jpg, true
	default:
		r.log.Warn("receipt image format unsupported", zap.String("path", path), zap.String("format", format))
		return nil, "", false
	}
}
