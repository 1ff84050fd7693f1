package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/internal/domain"
	"github.com/vfg2006/pos-backend-api/internal/usecases/selling"
	"github.com/vfg2006/pos-backend-api/pkg/apiErrors"
	"github.com/vfg2006/pos-backend-api/pkg/middleware"
)

type RecordSaleResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

type ListSalesResponse struct {
	OK    bool             `json:"ok"`
	Sales []map[string]any `json:"sales"`
}

// RecordSale aceita o corpo bruto do caixa como mapa: campos extras são
// preservados no snapshot da venda.
func RecordSale(service selling.SaleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Não autorizado")
			return
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido")
			return
		}

		id, err := service.RecordSale(claims, payload)
		if err != nil {
			if errors.Is(err, selling.ErrMissingSaleID) {
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da venda não fornecido")
				return
			}

			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao gravar venda")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(RecordSaleResponse{OK: true, ID: id})
	}
}

// ListSales lista as vendas visíveis para o chamador; company/agency são
// filtros opcionais de query string.
func ListSales(service selling.SaleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Não autorizado")
			return
		}

		sales, err := service.ListSales(claims, r.URL.Query().Get("company"), r.URL.Query().Get("agency"))
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar vendas")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ListSalesResponse{OK: true, Sales: sales})
	}
}

// DeleteSale remove por id, de forma idempotente.
func DeleteSale(service selling.SaleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(httprouter.ParamsFromContext(r.Context()).ByName("id"))
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da venda não fornecido")
			return
		}

		if err := service.DeleteSale(id); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao remover venda")
			return
		}

		writeOK(w)
	}
}
