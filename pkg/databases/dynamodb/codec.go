package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"github.com/shopspring/decimal"
)

func purchyKey(key models.PurchyKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.AttrAccountID: &types.AttributeValueMemberS{Value: key.AccountID},
		models.AttrPurchyTS:  &types.AttributeValueMemberS{Value: key.PurchyTS},
	}
}

func accountKey(accountID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.AttrAccountID: &types.AttributeValueMemberS{Value: accountID},
	}
}

// marshalPurchy encodes the tagged string attributes and appends the decimals
// as DynamoDB numbers
func marshalPurchy(p *models.Purchy) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchy: %w", err)
	}

	putNumber(item, models.AttrWeight, p.Weight)
	putNumber(item, models.AttrRate, p.Rate)
	putNumber(item, models.AttrAmount, p.Amount)

	return item, nil
}

func putNumber(item map[string]types.AttributeValue, name string, d *decimal.Decimal) {
	if d == nil {
		return
	}
	item[name] = &types.AttributeValueMemberN{Value: d.String()}
}

// unmarshalPurchy decodes a stored item. Numeric attributes are normalized
// whatever their stored type; values that are not numbers become absent.
func unmarshalPurchy(item map[string]types.AttributeValue) (*models.Purchy, error) {
	var p models.Purchy
	if err := attributevalue.UnmarshalMap(item, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal purchy: %w", err)
	}

	p.Weight = numberAttr(item[models.AttrWeight])
	p.Rate = numberAttr(item[models.AttrRate])
	p.Amount = numberAttr(item[models.AttrAmount])

	return &p, nil
}

func unmarshalPurchies(items []map[string]types.AttributeValue) ([]*models.Purchy, error) {
	purchies := make([]*models.Purchy, 0, len(items))
	for _, item := range items {
		p, err := unmarshalPurchy(item)
		if err != nil {
			return nil, err
		}
		purchies = append(purchies, p)
	}
	return purchies, nil
}

func numberAttr(av types.AttributeValue) *decimal.Decimal {
	if av == nil {
		return nil
	}

	var raw interface{}
	err := attributevalue.UnmarshalWithOptions(av, &raw, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil
	}

	return models.DecimalPtr(raw)
}
