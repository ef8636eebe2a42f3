package service

// ==================== 成色映射 ====================

// conditionEnumByID 内部成色 ID → Sell API 枚举
var conditionEnumByID = map[string]string{
	"new":                   "NEW",
	"new_other":             "NEW_OTHER",
	"new_with_defects":      "NEW_WITH_DEFECTS",
	"certified_refurbished": "CERTIFIED_REFURBISHED",
	"seller_refurbished":    "SELLER_REFURBISHED",
	"like_new":              "LIKE_NEW",
	"used_excellent":        "USED_EXCELLENT",
	"used_very_good":        "USED_VERY_GOOD",
	"used_good":             "USED_GOOD",
	"used_acceptable":       "USED_ACCEPTABLE",
	"for_parts":             "FOR_PARTS_OR_NOT_WORKING",
}

// conditionEnumByNumericID eBay 元数据接口返回的数字成色 ID → 枚举
var conditionEnumByNumericID = map[string]string{
	"1000": "NEW",
	"1500": "NEW_OTHER",
	"1750": "NEW_WITH_DEFECTS",
	"2000": "CERTIFIED_REFURBISHED",
	"2500": "SELLER_REFURBISHED",
	"2750": "LIKE_NEW",
	"3000": "USED_EXCELLENT",
	"4000": "USED_VERY_GOOD",
	"5000": "USED_GOOD",
	"6000": "USED_ACCEPTABLE",
	"7000": "FOR_PARTS_OR_NOT_WORKING",
}

// ConditionEnum 把内部 ID 或 API 枚举统一成 API 枚举
// 第二个返回值表示是否在白名单内
func ConditionEnum(conditionID string) (string, bool) {
	if enum, ok := conditionEnumByID[conditionID]; ok {
		return enum, true
	}
	// 调用方可能直接传大写枚举
	for _, enum := range conditionEnumByID {
		if enum == conditionID {
			return enum, true
		}
	}
	return "", false
}
