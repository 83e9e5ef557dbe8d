package constants

// Trạng thái đơn hàng
const (
	ORDER_NEW        = "new"
	ORDER_PROCESSING = "processing"
	ORDER_COMPLETED  = "completed"
	ORDER_REJECTED   = "rejected"
	ORDER_CANCELLED  = "cancelled"
)

// Trạng thái bàn
const (
	TABLE_AVAILABLE = "available"
	TABLE_OCCUPIED  = "occupied"
	TABLE_RESERVED  = "reserved"
)

// Loại giao dịch điểm
const (
	TX_EARNED   = "earned"
	TX_REDEEMED = "redeemed"
	TX_EXPIRED  = "expired"
	TX_BONUS    = "bonus"
)

const (
	TIER_BRONZE   = "bronze"
	TIER_SILVER   = "silver"
	TIER_GOLD     = "gold"
	TIER_PLATINUM = "platinum"
)

const (
	STATUS_ACTIVE = "active"

	REDEMPTION_COMPLETED = "completed"
)

// Thông báo lỗi trả về cho client
const (
	ERROR_INTERNAL_ERROR     = "Internal server error"
	DATA_INPUT_IS_NOT_NUMBER = "Input is not a number"
	ORDER_NOT_FOUND          = "Order not found"
	TABLE_NOT_FOUND          = "Table not found"
	CUSTOMER_NOT_FOUND       = "Customer loyalty account not found"
	REWARD_NOT_FOUND         = "Reward not found or inactive"
	INVALID_TRANSITION       = "Invalid status transition"
	INVALID_STATUS           = "Invalid status"
	INSUFFICIENT_POINTS      = "Insufficient points for redemption"
	INVALID_INPUT            = "Invalid input"
	ALREADY_EXISTS           = "Record already exists"
	AWARD_FAILED             = "Loyalty points could not be awarded"
)

// Sự kiện realtime
const (
	EVENT_ORDER_STATUS_UPDATED = "order_status_updated"
	EVENT_POINTS_AWARDED       = "loyalty_points_awarded"
	EVENT_TABLE_STATUS_CHANGED = "table_status_changed"
	EVENT_TIER_UPGRADED        = "loyalty_tier_upgraded"
)
