package utils

// SafeSlice 截取前 max 个元素，不足时原样返回
func SafeSlice[T any](slice []T, max int) []T {
	if max < 0 {
		max = 0
	}
	if len(slice) < max {
		return slice
	}
	return slice[:max]
}

// IndexOf 返回 target 的下标，不存在时返回 -1
func IndexOf[T comparable](slice []T, target T) int {
	for i, item := range slice {
		if item == target {
			return i
		}
	}
	return -1
}
