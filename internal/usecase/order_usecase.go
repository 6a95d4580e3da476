package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

// 注文時に固定する配送先。
type ShippingInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

func (s ShippingInfo) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "shipping name required")
	}
	if strings.TrimSpace(s.Address) == "" {
		return NewHTTPError(http.StatusBadRequest, "shipping address required")
	}
	if strings.TrimSpace(s.City) == "" {
		return NewHTTPError(http.StatusBadRequest, "shipping city required")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		return NewHTTPError(http.StatusBadRequest, "shipping postal code required")
	}
	if strings.TrimSpace(s.Phone) == "" {
		return NewHTTPError(http.StatusBadRequest, "shipping phone required")
	}
	return nil
}

// 注文確定。注文行・明細・在庫減算・カート全消しまでを
// 1トランザクションで行う。途中で失敗したら全部戻り、カートは残る。
// price_at_purchaseは確定時点の価格をそのまま写し、以後は再計算しない。
func (u *OrderUsecase) Create(ctx context.Context, profileID string, shipping ShippingInfo) (model.Order, error) {
	if profileID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := shipping.validate(); err != nil {
		return model.Order{}, err
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート明細取得（商品スナップショット付き）
		cartItems, err := r.CartItems().ListByProfileID(ctx, profileID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//在庫を確定時に再チェックして減らしつつ、明細を組み立てる
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var total int64 = 0
		now := time.Now()

		for _, ci := range cartItems {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//確定時点の価格を写す
			orderItems = append(orderItems, model.OrderItem{
				ProductID:       ci.ProductID,
				Quantity:        ci.Quantity,
				PriceAtPurchase: ci.Product.Price,
				CreatedAt:       now,
			})

			total += ci.Product.Price * ci.Quantity
		}

		// 注文作成
		created, err := r.Orders().Create(ctx, model.Order{
			ProfileID:          profileID,
			TotalAmount:        total,
			Status:             model.OrderStatusPending,
			ShippingName:       strings.TrimSpace(shipping.Name),
			ShippingAddress:    strings.TrimSpace(shipping.Address),
			ShippingCity:       strings.TrimSpace(shipping.City),
			ShippingPostalCode: strings.TrimSpace(shipping.PostalCode),
			ShippingPhone:      strings.TrimSpace(shipping.Phone),
			PaymentMethod:      model.PaymentMethodCOD,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, created.ID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文が保存できてからカートを空にする
		if err := r.CartItems().DeleteAllByProfileID(ctx, profileID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//明細・商品付きで読み直して返す
		full, err := r.Orders().FindByID(ctx, created.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = full
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// 本人の注文履歴を新着順で返す。
func (u *OrderUsecase) ListFor(ctx context.Context, profileID string) ([]model.Order, error) {
	if profileID == "" {
		return []model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByProfileID(ctx, profileID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = orders
		return nil
	})

	if err != nil {
		return []model.Order{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) Detail(ctx context.Context, profileID string, orderID string) (model.Order, error) {
	if profileID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.ProfileID != profileID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		out = o
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}
