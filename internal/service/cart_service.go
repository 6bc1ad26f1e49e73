package service

import (
	"encoding/json"
	"strings"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/constants"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/models"
	"github.com/driftwear-shop/driftwear/internal/repository"

	"github.com/shopspring/decimal"
)

// 历史快照中以十进制金额书写的价格达到该值时，视为已经是最小货币单位。
const legacyMinorUnitThreshold = 1000

// AddCartItemInput 加入购物车输入。价格解析按优先级取值：
// 显式最小单位价格 > 十进制价格 > 商品目录价格。
type AddCartItemInput struct {
	ProductID     string
	Title         string
	Variant       string
	ThumbnailURL  string
	DetailURL     string
	PriceCents    *int64
	Price         string
	StripePriceID string
}

// Discount 全局折扣描述（派生值，不随购物车持久化）
type Discount struct {
	Code       string
	Percent    float64
	AmountCents int64
}

// CartService 购物车服务。持久化快照的唯一读写入口：
// 所有读取都经过迁移归一化，所有写入都先归一化再整值覆盖。
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	discount    config.DiscountConfig
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, discount config.DiscountConfig) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		discount:    discount,
	}
}

// Load 读取购物车。缺失返回空列表；快照损坏时按空购物车处理并复位持久化内容；
// 迁移改变了数据时回写归一化结果。
func (s *CartService) Load(token string) ([]models.CartLine, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrCartTokenInvalid
	}
	cart, err := s.cartRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if cart == nil || strings.TrimSpace(cart.ItemsJSON) == "" {
		return []models.CartLine{}, nil
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal([]byte(cart.ItemsJSON), &raw); err != nil {
		logger.Warnw("cart_snapshot_corrupt_reset", "token", token, "error", err)
		if err := s.cartRepo.SaveSnapshot(token, "[]"); err != nil {
			return nil, err
		}
		return []models.CartLine{}, nil
	}

	lines, changed := migrateRecords(raw)
	if changed {
		if err := s.persist(token, lines); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// Save 归一化并整值覆盖持久化购物车
func (s *CartService) Save(token string, lines []models.CartLine) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrCartTokenInvalid
	}
	normalized := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		normalized = append(normalized, normalizeLine(line))
	}
	return s.persist(token, normalized)
}

// AddItem 加入购物车。同 key 条目数量 +1 并回填缺失的价格与外部价格引用；
// 否则按数量 1 追加。
func (s *CartService) AddItem(token string, input AddCartItemInput) ([]models.CartLine, error) {
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		return nil, ErrCartItemInvalid
	}
	lines, err := s.Load(token)
	if err != nil {
		return nil, err
	}

	resolved := s.resolveInput(productID, input)
	key := CartLineKey(productID, resolved.Variant)
	priceCents := resolved.resolvedPriceCents()

	found := false
	for i := range lines {
		if lines[i].Key != key {
			continue
		}
		found = true
		lines[i].Quantity++
		// 只回填缺失值，不覆盖既有值
		if lines[i].PriceCents == 0 && priceCents > 0 {
			lines[i].PriceCents = priceCents
		}
		if lines[i].StripePriceID == "" && resolved.StripePriceID != "" {
			lines[i].StripePriceID = resolved.StripePriceID
		}
		break
	}
	if !found {
		lines = append(lines, models.CartLine{
			Key:           key,
			ProductID:     productID,
			Title:         resolved.Title,
			Variant:       resolved.Variant,
			ThumbnailURL:  resolved.ThumbnailURL,
			DetailURL:     resolved.DetailURL,
			PriceCents:    priceCents,
			Quantity:      1,
			StripePriceID: resolved.StripePriceID,
		})
	}

	if err := s.Save(token, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// IncrementItem 数量 +1
func (s *CartService) IncrementItem(token, key string) ([]models.CartLine, error) {
	return s.adjustQuantity(token, key, 1)
}

// DecrementItem 数量 -1，减到 0 时整条移除
func (s *CartService) DecrementItem(token, key string) ([]models.CartLine, error) {
	return s.adjustQuantity(token, key, -1)
}

// RemoveItem 删除指定 key 的条目，条目不存在时静默成功
func (s *CartService) RemoveItem(token, key string) ([]models.CartLine, error) {
	lines, err := s.Load(token)
	if err != nil {
		return nil, err
	}
	kept := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.Key == key {
			continue
		}
		kept = append(kept, line)
	}
	if err := s.Save(token, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear 清空购物车
func (s *CartService) Clear(token string) error {
	return s.Save(token, []models.CartLine{})
}

// SubtotalCents 小计 = Σ 单价 × 数量
func (s *CartService) SubtotalCents(lines []models.CartLine) int64 {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.PriceCents * int64(line.Quantity)
	}
	return subtotal
}

// ItemCount 徽标数量 = Σ 数量
func (s *CartService) ItemCount(lines []models.CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

// ActiveDiscount 返回当前生效的全局折扣；未启用、百分比非正、小计非正
// 或计算出的折扣额非正时返回 nil。
func (s *CartService) ActiveDiscount(subtotalCents int64) *Discount {
	if !s.discount.Enabled || s.discount.Percent <= 0 || subtotalCents <= 0 {
		return nil
	}
	amount := decimal.NewFromInt(subtotalCents).
		Mul(decimal.NewFromFloat(s.discount.Percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()
	if amount <= 0 {
		return nil
	}
	return &Discount{
		Code:        s.discount.Code,
		Percent:     s.discount.Percent,
		AmountCents: amount,
	}
}

// CartLineKey 生成条目 key：productID 拼接可选变体
func CartLineKey(productID, variant string) string {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return productID
	}
	return productID + constants.CartKeyVariantSeparator + variant
}

func (s *CartService) adjustQuantity(token, key string, delta int) ([]models.CartLine, error) {
	lines, err := s.Load(token)
	if err != nil {
		return nil, err
	}
	found := false
	kept := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.Key == key {
			found = true
			line.Quantity += delta
			if line.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, line)
	}
	if !found {
		return nil, ErrCartItemNotFound
	}
	if err := s.Save(token, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *CartService) persist(token string, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.cartRepo.SaveSnapshot(token, string(payload))
}

// resolveInput 补全加购输入：价格按显式最小单位 > 十进制价格 > 目录价格取值，
// 标题、缩略图与外部价格引用缺失时从目录回填。
func (s *CartService) resolveInput(productID string, input AddCartItemInput) AddCartItemInput {
	resolved := input
	resolved.Variant = strings.TrimSpace(input.Variant)
	resolved.StripePriceID = strings.TrimSpace(input.StripePriceID)

	priceResolved := false
	if input.PriceCents != nil {
		resolved.PriceCents = input.PriceCents
		if *resolved.PriceCents < 0 {
			zero := int64(0)
			resolved.PriceCents = &zero
		}
		priceResolved = true
	} else if strings.TrimSpace(input.Price) != "" {
		cents := ParsePriceCents(input.Price)
		resolved.PriceCents = &cents
		priceResolved = true
	}

	needCatalog := !priceResolved || resolved.Title == "" || resolved.StripePriceID == ""
	if needCatalog && s.productRepo != nil {
		product, err := s.productRepo.GetBySlug(productID, true)
		if err != nil {
			logger.Warnw("cart_add_catalog_lookup_failed", "product_id", productID, "error", err)
		} else if product != nil {
			if !priceResolved {
				cents := product.PriceAmount.MinorUnits()
				resolved.PriceCents = &cents
				priceResolved = true
			}
			if resolved.Title == "" {
				resolved.Title = product.Title
			}
			if resolved.ThumbnailURL == "" {
				resolved.ThumbnailURL = product.ThumbnailURL
			}
			if resolved.DetailURL == "" {
				resolved.DetailURL = product.DetailURL()
			}
			if resolved.StripePriceID == "" {
				resolved.StripePriceID = strings.TrimSpace(product.StripePriceID)
			}
		}
	}
	if !priceResolved {
		zero := int64(0)
		resolved.PriceCents = &zero
	}
	return resolved
}

func (i AddCartItemInput) resolvedPriceCents() int64 {
	if i.PriceCents == nil {
		return 0
	}
	return *i.PriceCents
}

// ParsePriceCents 解析十进制价格为最小货币单位。接受带货币符号、千分位
// 逗号与空白的字符串；无法解析时返回 0。
func ParsePriceCents(value string) int64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	replacer := strings.NewReplacer(
		"$", "", "€", "", "£", "", "¥", "",
		",", "", " ", "", "\t", "",
	)
	cleaned = replacer.Replace(cleaned)
	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return parsed.Shift(2).Round(0).IntPart()
}

// migrateRecords 将任意历史形态的快照记录迁移为规范条目。迁移是幂等的：
// 对已规范的记录不产生任何变更。
func migrateRecords(raw []map[string]interface{}) ([]models.CartLine, bool) {
	lines := make([]models.CartLine, 0, len(raw))
	changed := false
	for _, record := range raw {
		line, recordChanged := migrateRecord(record)
		if line.ProductID == "" && line.Key == "" {
			changed = true
			continue
		}
		if recordChanged {
			changed = true
		}
		lines = append(lines, line)
	}
	return lines, changed
}

func migrateRecord(record map[string]interface{}) (models.CartLine, bool) {
	changed := false

	productID := readRecordString(record, "product_id", "productId", "id")
	variant := readRecordString(record, "variant")
	key := readRecordString(record, "key")
	if key == "" {
		key = CartLineKey(productID, variant)
		changed = true
	}
	if productID == "" {
		// 旧快照只有 key 没有 product_id 时从 key 还原
		productID = key
		if idx := strings.Index(key, constants.CartKeyVariantSeparator); idx > 0 {
			productID = key[:idx]
		}
		changed = true
	}

	line := models.CartLine{
		Key:          key,
		ProductID:    productID,
		Title:        readRecordString(record, "title"),
		Variant:      variant,
		ThumbnailURL: readRecordString(record, "thumbnail_url", "thumbnailUrl", "thumb"),
		DetailURL:    readRecordString(record, "detail_url", "detailUrl", "url"),
	}

	// 数量：默认 1，四舍五入，下限 1
	quantity, quantityChanged := coerceQuantity(record)
	line.Quantity = quantity
	if quantityChanged {
		changed = true
	}

	// 价格：缺最小单位价格时从历史十进制价格推导，并丢弃历史字段
	priceCents, priceChanged := coercePriceCents(record)
	line.PriceCents = priceCents
	if priceChanged {
		changed = true
	}

	// 外部价格引用：保证字段存在（缺省为空串）
	stripePriceID, hasRef := readRecordStringOK(record, "stripe_price_id", "stripePriceId", "external_price_ref")
	line.StripePriceID = stripePriceID
	if !hasRef {
		changed = true
	}

	// 非规范字段名（camelCase 等）统一为规范形态
	if !changed && !isCanonicalRecord(record) {
		changed = true
	}
	return line, changed
}

func coerceQuantity(record map[string]interface{}) (int, bool) {
	value, ok := firstRecordValue(record, "qty", "quantity")
	if !ok {
		return 1, true
	}
	number, ok := toDecimal(value)
	if !ok {
		return 1, true
	}
	rounded := number.Round(0)
	quantity := int(rounded.IntPart())
	changedByRounding := !number.Equal(rounded)
	if quantity < 1 {
		return 1, true
	}
	return quantity, changedByRounding
}

func coercePriceCents(record map[string]interface{}) (int64, bool) {
	if value, ok := firstRecordValue(record, "price_cents", "priceCents"); ok {
		number, numberOK := toDecimal(value)
		if !numberOK {
			return 0, true
		}
		rounded := number.Round(0)
		cents := rounded.IntPart()
		if cents < 0 {
			return 0, true
		}
		// 同时存在历史 price 字段时仍需丢弃
		_, hasLegacy := record["price"]
		return cents, !number.Equal(rounded) || hasLegacy
	}

	legacy, ok := record["price"]
	if !ok {
		return 0, true
	}
	number, numberOK := toDecimal(legacy)
	if !numberOK {
		return 0, true
	}
	return legacyPriceCents(number), true
}

// legacyPriceCents 历史价格字段推导：达到阈值按已是最小单位处理，
// 否则按十进制金额折算为分。
func legacyPriceCents(amount decimal.Decimal) int64 {
	if amount.IsNegative() {
		return 0
	}
	if amount.Cmp(decimal.NewFromInt(legacyMinorUnitThreshold)) >= 0 {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

func normalizeLine(line models.CartLine) models.CartLine {
	line.ProductID = strings.TrimSpace(line.ProductID)
	line.Variant = strings.TrimSpace(line.Variant)
	if line.Key == "" {
		line.Key = CartLineKey(line.ProductID, line.Variant)
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.PriceCents < 0 {
		line.PriceCents = 0
	}
	return line
}

// isCanonicalRecord 判断记录字段名是否全部为规范形态
func isCanonicalRecord(record map[string]interface{}) bool {
	canonical := map[string]struct{}{
		"key": {}, "product_id": {}, "title": {}, "variant": {},
		"thumbnail_url": {}, "detail_url": {},
		"price_cents": {}, "qty": {}, "stripe_price_id": {},
	}
	for field := range record {
		if _, ok := canonical[field]; !ok {
			return false
		}
	}
	return true
}

func firstRecordValue(record map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if value, ok := record[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func readRecordString(record map[string]interface{}, keys ...string) string {
	value, _ := readRecordStringOK(record, keys...)
	return value
}

func readRecordStringOK(record map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		value, ok := record[key]
		if !ok || value == nil {
			continue
		}
		if typed, ok := value.(string); ok {
			return strings.TrimSpace(typed), true
		}
	}
	return "", false
}

func toDecimal(value interface{}) (decimal.Decimal, bool) {
	switch typed := value.(type) {
	case float64:
		return decimal.NewFromFloat(typed), true
	case int64:
		return decimal.NewFromInt(typed), true
	case int:
		return decimal.NewFromInt(int64(typed)), true
	case json.Number:
		parsed, err := decimal.NewFromString(typed.String())
		if err != nil {
			return decimal.Zero, false
		}
		return parsed, true
	case string:
		cents := ParsePriceCents(typed)
		return decimal.NewFromInt(cents).Shift(-2), true
	default:
		return decimal.Zero, false
	}
}
