package postgres

import (
	"github.com/tiendazen/payment-service/internal/domain"
)

func toDBModel(order *domain.Order) OrderModel {
	return OrderModel{
		CommerceOrderID: order.CommerceOrderID,
		GatewayToken:    order.GatewayToken,
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
		OwnerID:         order.OwnerID,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toDomainModel(m OrderModel, items []OrderItemModel) *domain.Order {
	lineItems := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, domain.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return &domain.Order{
		CommerceOrderID: m.CommerceOrderID,
		GatewayToken:    m.GatewayToken,
		TotalAmount:     m.TotalAmount,
		LineItems:       lineItems,
		Status:          domain.OrderStatus(m.Status),
		OwnerID:         m.OwnerID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
