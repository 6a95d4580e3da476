package usecase

import (
	"context"
	"net/http"
	"time"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

// 全注文一覧（オーナー用）。
func (u *AdminOrderUsecase) ListAll(ctx context.Context, actor Actor) ([]model.Order, error) {
	if err := requireOwner(actor); err != nil {
		return []model.Order{}, err
	}

	var outs []model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListAll(ctx)
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

// ステータス更新。遷移グラフは持たず、5値のどれへでも上書きできる。
// cancelledへ入るときだけ在庫を戻す（戻すのは1回だけ）。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID string, newStatus string) (model.Order, error) {
	if err := requireOwner(actor); err != nil {
		return model.Order{}, err
	}
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	status := model.OrderStatus(newStatus)
	if !status.Valid() {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
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

		// すでに同じなら何もしない
		if o.Status == status {
			out = o
			return nil
		}

		//cancelledに入るときだけ在庫戻し
		if status == model.OrderStatusCancelled {
			for _, it := range o.Items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}
		//cancelledから出るときは在庫を再度引く（売り越しならエラー）
		if o.Status == model.OrderStatusCancelled {
			for _, it := range o.Items {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					return NewHTTPError(http.StatusBadRequest, "out of stock")
				}
			}
		}

		beforeStatus := string(o.Status)
		if err := r.Orders().UpdateStatus(ctx, orderID, status); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + beforeStatus + `"}`
		afterJSON := `{"status":"` + string(status) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorProfileID: actor.ProfileID,
			Action:         model.AuditActionUpdateOrderStatus,
			ResourceType:   model.AuditResourceOrder,
			ResourceID:     orderID,
			BeforeJSON:     beforeJSON,
			AfterJSON:      afterJSON,
			CreatedAt:      time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//更新後を読み直して返す
		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = updated
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}
