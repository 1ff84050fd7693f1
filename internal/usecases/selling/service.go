package selling

import (
	"math"
	"strconv"
	"strings"

	"github.com/vfg2006/pos-backend-api/infrastructure/repository"
	"github.com/vfg2006/pos-backend-api/internal/config"
	"github.com/vfg2006/pos-backend-api/internal/domain"
)

// maxSalesPageSize limita o tamanho da resposta de listagem.
const maxSalesPageSize = 2000

type SaleService interface {
	RecordSale(claims *domain.Claims, payload map[string]any) (string, error)
	ListSales(claims *domain.Claims, company, agency string) ([]map[string]any, error)
	DeleteSale(id string) error
}

type Service struct {
	saleRepo repository.SaleRepository
	cfg      *config.Config
}

func NewService(saleRepo repository.SaleRepository, cfg *config.Config) SaleService {
	return &Service{
		saleRepo: saleRepo,
		cfg:      cfg,
	}
}

// RecordSale normaliza o corpo enviado pelo caixa e grava a venda por upsert.
// Os sistemas de caixa em campo usam grafias diferentes para os mesmos
// campos, por isso os aliases.
func (s *Service) RecordSale(claims *domain.Claims, payload map[string]any) (string, error) {
	id := stringField(payload, "id", "sale_id", "uid")
	if id == "" {
		return "", ErrMissingSaleID
	}

	company := stringField(payload, "company")
	if company == "" {
		company = claims.UserCompany
	}
	if company == "" {
		company = s.cfg.Company.DefaultName
	}

	seller := stringField(payload, "seller", "user")
	if seller == "" {
		seller = claims.UserEmail
	}

	sale := &domain.Sale{
		ID:         id,
		Company:    company,
		Agency:     stringField(payload, "agency", "store", "point_of_sale"),
		Seller:     seller,
		TotalCents: totalCents(payload),
		Payload:    payload,
	}

	if err := s.saleRepo.Upsert(sale); err != nil {
		return "", err
	}

	return id, nil
}

// ListSales monta o predicado de visibilidade do chamador e devolve as linhas
// já mescladas com o snapshot original.
//
// Regra (fail closed): super_admin enxerga qualquer empresa; todos os outros
// ficam presos à própria empresa e ao próprio conjunto de agências. Um filtro
// explícito de agência fora do conjunto permitido, ou um conjunto vazio,
// resulta em zero linhas, não em acesso ampliado.
func (s *Service) ListSales(claims *domain.Claims, company, agency string) ([]map[string]any, error) {
	filter := domain.SaleFilter{Limit: maxSalesPageSize}

	if claims.UserRole == domain.RoleSuperAdmin {
		filter.Company = strings.TrimSpace(company)
		if filter.Company == "" {
			filter.Company = claims.UserCompany
		}
		filter.Agency = strings.TrimSpace(agency)
	} else {
		filter.Company = claims.UserCompany

		allowed := claims.AgencyList()
		agency = strings.TrimSpace(agency)

		switch {
		case agency != "":
			if !containsString(allowed, agency) {
				return []map[string]any{}, nil
			}
			filter.Agency = agency
		case len(allowed) == 0:
			return []map[string]any{}, nil
		default:
			filter.Agencies = allowed
		}
	}

	sales, err := s.saleRepo.List(filter)
	if err != nil {
		return nil, err
	}

	merged := make([]map[string]any, 0, len(sales))
	for _, sale := range sales {
		merged = append(merged, mergeSaleRow(sale))
	}

	return merged, nil
}

func (s *Service) DeleteSale(id string) error {
	return s.saleRepo.Delete(id)
}

// mergeSaleRow expande a linha com o snapshot original por baixo das colunas
// canônicas. Em conflito de chave as colunas canônicas vencem, sempre: o
// snapshot nunca pode sobrescrever total_cents e afins com valores velhos.
func mergeSaleRow(sale *domain.Sale) map[string]any {
	row := make(map[string]any, len(sale.Payload)+6)

	for k, v := range sale.Payload {
		row[k] = v
	}

	row["id"] = sale.ID
	row["company"] = sale.Company
	row["agency"] = sale.Agency
	row["seller"] = sale.Seller
	row["total_cents"] = sale.TotalCents
	row["created_at"] = sale.CreatedAt

	return row
}

// stringField devolve o primeiro alias presente e não vazio, com trim.
func stringField(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		raw, ok := payload[key]
		if !ok {
			continue
		}

		if s, ok := raw.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// totalCents resolve o total em centavos: total_cents/totalCents valem como
// estão; na ausência deles, total é interpretado em unidades monetárias e
// multiplicado por 100.
func totalCents(payload map[string]any) int64 {
	if v, ok := numberField(payload, "total_cents", "totalCents"); ok {
		return int64(math.Round(v))
	}

	if v, ok := numberField(payload, "total"); ok {
		return int64(math.Round(v * 100))
	}

	return 0
}

// numberField aceita os tipos que um JSON decodificado em map produz, mais
// strings numéricas enviadas por caixas antigos.
func numberField(payload map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := payload[key]
		if !ok || raw == nil {
			continue
		}

		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
