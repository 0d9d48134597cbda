package database

import (
	"context"
	"errors"
	"fmt"
	"order_lifecycle/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// loadOrder собирает заказ целиком: группы с заведением и филиалом, позиции, таймлайн,
// сообщение Telegram и курьера. forUpdate блокирует строку заказа до конца транзакции.
func loadOrder(ctx context.Context, q sqlx.QueryerContext, orderID int64, forUpdate bool) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var order model.Order
	if err := sqlx.GetContext(ctx, q, &order, query, orderID); err != nil {
		return nil, fmt.Errorf("не удалось получить заказ %d: %w", orderID, classify(err))
	}

	var groups []groupRow
	groupsQuery := `SELECT id, order_id, institution_id, branch_id, products_sum, delivering_sum, total_sum, commission
		FROM order_item_groups WHERE order_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, q, &groups, groupsQuery, orderID); err != nil {
		return nil, fmt.Errorf("не удалось получить группы заказа %d: %w", orderID, err)
	}

	for _, g := range groups {
		group, err := loadGroup(ctx, q, g)
		if err != nil {
			return nil, err
		}
		order.Groups = append(order.Groups, group)
	}

	order.Timeline = model.Timeline{OrderID: orderID}
	err := sqlx.GetContext(ctx, q, &order.Timeline, `SELECT `+timelineColumns+` FROM order_timelines WHERE order_id = $1`, orderID)
	if err != nil && !errors.Is(classify(err), ErrNotFound) {
		return nil, fmt.Errorf("не удалось получить таймлайн заказа %d: %w", orderID, err)
	}

	var msg model.TelegramMessage
	err = sqlx.GetContext(ctx, q, &msg, `SELECT order_id, message_id, message_id2, text FROM telegram_messages WHERE order_id = $1`, orderID)
	switch {
	case err == nil:
		order.Message = &msg
	case !errors.Is(classify(err), ErrNotFound):
		return nil, fmt.Errorf("не удалось получить сообщение заказа %d: %w", orderID, err)
	}

	if order.CourierID != nil {
		var c model.Courier
		if err := sqlx.GetContext(ctx, q, &c, `SELECT `+courierColumns+` FROM couriers WHERE id = $1`, *order.CourierID); err != nil {
			return nil, fmt.Errorf("не удалось получить курьера заказа %d: %w", orderID, classify(err))
		}
		order.Courier = &c
	}

	return &order, nil
}

func loadGroup(ctx context.Context, q sqlx.QueryerContext, g groupRow) (model.ItemGroup, error) {
	group := model.ItemGroup{
		ID:            g.ID,
		OrderID:       g.OrderID,
		ProductsSum:   g.ProductsSum,
		DeliveringSum: g.DeliveringSum,
		TotalSum:      g.TotalSum,
		Commission:    g.Commission,
	}

	inst, err := getInstitution(ctx, q, g.InstitutionID)
	if err != nil {
		return group, err
	}
	group.Institution = *inst

	branches, err := listBranches(ctx, q, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, g.BranchID)
	if err != nil {
		return group, err
	}
	if len(branches) == 0 {
		return group, fmt.Errorf("филиал %d группы %d: %w", g.BranchID, g.ID, ErrNotFound)
	}
	group.Branch = branches[0]

	var rows []itemRow
	itemsQuery := `SELECT id, group_id, product_id, product_uuid, product_name, price, spic_id, package_code, vat,
		count, total_sum, options, is_incident, incident_product
		FROM order_items WHERE group_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, q, &rows, itemsQuery, g.ID); err != nil {
		return group, fmt.Errorf("не удалось получить позиции группы %d: %w", g.ID, err)
	}
	for _, r := range rows {
		item, err := r.toModel()
		if err != nil {
			return group, err
		}
		group.Items = append(group.Items, item)
	}
	return group, nil
}

func getInstitution(ctx context.Context, q sqlx.QueryerContext, institutionID int64) (*model.Institution, error) {
	var row institutionRow
	if err := sqlx.GetContext(ctx, q, &row, `SELECT `+institutionColumns+` FROM institutions WHERE id = $1`, institutionID); err != nil {
		return nil, fmt.Errorf("не удалось получить заведение %d: %w", institutionID, classify(err))
	}
	inst := row.toModel()
	return &inst, nil
}

// listBranches выполняет запрос филиалов и подгружает их расписание одним запросом.
func listBranches(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]model.Branch, error) {
	var rows []branchRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("не удалось получить филиалы: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	var schedule []model.ScheduleEntry
	scheduleQuery := `SELECT branch_id, day_of_week, start_time, end_time, is_active
		FROM branch_schedules WHERE branch_id = ANY($1)`
	if err := sqlx.SelectContext(ctx, q, &schedule, scheduleQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("не удалось получить расписание филиалов: %w", err)
	}

	byBranch := make(map[int64][]model.ScheduleEntry, len(rows))
	for _, e := range schedule {
		byBranch[e.BranchID] = append(byBranch[e.BranchID], e)
	}

	branches := make([]model.Branch, len(rows))
	for i, r := range rows {
		branches[i] = r.toModel()
		branches[i].Schedule = byBranch[r.ID]
	}
	return branches, nil
}
