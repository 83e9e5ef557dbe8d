package service

import "restaurant_manager/constants"

// TierInfo mô tả quyền lợi của một hạng. PointBonus chỉ để hiển thị, không tham gia tính điểm.
type TierInfo struct {
	PointBonus  int      `json:"pointBonus"`
	Benefits    []string `json:"benefits"`
	Description string   `json:"description"`
}

type tierStep struct {
	Name     string
	MinPoint int64
	Bonus    int64
	Info     TierInfo
}

// tiers xếp tăng dần theo ngưỡng điểm tích luỹ
var tiers = []tierStep{
	{constants.TIER_BRONZE, 0, 0, TierInfo{
		PointBonus:  0,
		Benefits:    []string{"Basic rewards", "Birthday bonus points"},
		Description: "Welcome tier for new members",
	}},
	{constants.TIER_SILVER, 2000, 200, TierInfo{
		PointBonus:  10,
		Benefits:    []string{"10% bonus points on all orders", "Priority customer support", "Exclusive monthly offers"},
		Description: "Earned at 2,000 lifetime points",
	}},
	{constants.TIER_GOLD, 5000, 500, TierInfo{
		PointBonus:  15,
		Benefits:    []string{"15% bonus points on all orders", "Free delivery on orders over 100 EGP", "VIP event invitations"},
		Description: "Earned at 5,000 lifetime points",
	}},
	{constants.TIER_PLATINUM, 10000, 1000, TierInfo{
		PointBonus:  20,
		Benefits:    []string{"20% bonus points on all orders", "Personal concierge service", "Elite exclusive rewards", "Complimentary items"},
		Description: "Earned at 10,000 lifetime points",
	}},
}

// TierFor ánh xạ điểm tích luỹ sang hạng.
func TierFor(lifetime int64) string {
	name := constants.TIER_BRONZE
	for _, t := range tiers {
		if lifetime >= t.MinPoint {
			name = t.Name
		}
	}
	return name
}

// UpgradeBonus là điểm thưởng khi lên tới hạng tier.
func UpgradeBonus(tier string) int64 {
	for _, t := range tiers {
		if t.Name == tier {
			return t.Bonus
		}
	}
	return 0
}

// NextTier trả hạng kế tiếp và ngưỡng của nó; ok=false nếu đã ở hạng cao nhất.
func NextTier(tier string) (name string, threshold int64, ok bool) {
	for i, t := range tiers {
		if t.Name == tier && i+1 < len(tiers) {
			return tiers[i+1].Name, tiers[i+1].MinPoint, true
		}
	}
	return "", 0, false
}

// TierBenefits trả quyền lợi của hạng; hạng lạ dùng quyền lợi bronze.
func TierBenefits(tier string) TierInfo {
	for _, t := range tiers {
		if t.Name == tier {
			return t.Info
		}
	}
	return tiers[0].Info
}
