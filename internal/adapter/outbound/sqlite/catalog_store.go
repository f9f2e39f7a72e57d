package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// CatalogStore adapts Store to the policy.CatalogStore port. Rules and
// their (resource, action) index are persisted as SQLite rows; a rule's
// Conditions slice is serialized with encodeConditions into the flat
// wire layout Condition's own doc comment describes it as.
type CatalogStore struct {
	store *Store
}

// NewCatalogStore wraps a shared Store as a policy.CatalogStore.
func NewCatalogStore(store *Store) *CatalogStore {
	return &CatalogStore{store: store}
}

func (c *CatalogStore) AllocateID(ctx context.Context) (policy.ID, error) {
	var id policy.ID
	err := c.store.withCrossProcessLock(func() error {
		tx, err := c.store.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("sqlite: begin allocate: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if err := tx.QueryRowContext(ctx, `SELECT next_id FROM rule_seq`).Scan(&id); err != nil {
			return fmt.Errorf("sqlite: read rule_seq: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE rule_seq SET next_id = ?`, id+1); err != nil {
			return fmt.Errorf("sqlite: advance rule_seq: %w", err)
		}
		return tx.Commit()
	})
	return id, err
}

func (c *CatalogStore) PutRule(ctx context.Context, rule policy.Rule) error {
	encoded, err := encodeConditions(rule.Conditions)
	if err != nil {
		return err
	}
	return c.store.withCrossProcessLock(func() error {
		_, err := c.store.db.ExecContext(ctx,
			`INSERT INTO rules (id, resource, action, conditions, enabled) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET resource = excluded.resource, action = excluded.action,
				conditions = excluded.conditions, enabled = excluded.enabled`,
			rule.ID, rule.Resource[:], rule.Action, encoded, boolToInt(rule.Enabled))
		if err != nil {
			return fmt.Errorf("sqlite: put rule: %w", err)
		}
		return nil
	})
}

func (c *CatalogStore) GetRule(ctx context.Context, id policy.ID) (policy.Rule, bool, error) {
	var resourceRaw []byte
	var action int
	var encoded []byte
	var enabled int
	err := c.store.db.QueryRowContext(ctx,
		`SELECT resource, action, conditions, enabled FROM rules WHERE id = ?`, id).
		Scan(&resourceRaw, &action, &encoded, &enabled)
	if err == sql.ErrNoRows {
		return policy.Rule{}, false, nil
	}
	if err != nil {
		return policy.Rule{}, false, fmt.Errorf("sqlite: get rule: %w", err)
	}
	conditions, err := decodeConditions(encoded)
	if err != nil {
		return policy.Rule{}, false, err
	}
	var resource attribute.Identifier
	copy(resource[:], resourceRaw)
	return policy.Rule{
		ID:         id,
		Resource:   resource,
		Action:     policy.Action(action),
		Conditions: conditions,
		Enabled:    enabled != 0,
	}, true, nil
}

func (c *CatalogStore) AllRules(ctx context.Context) ([]policy.Rule, error) {
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, resource, action, conditions, enabled FROM rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: all rules: %w", err)
	}
	defer rows.Close()

	var out []policy.Rule
	for rows.Next() {
		var id policy.ID
		var resourceRaw, encoded []byte
		var action, enabled int
		if err := rows.Scan(&id, &resourceRaw, &action, &encoded, &enabled); err != nil {
			return nil, fmt.Errorf("sqlite: scan rule row: %w", err)
		}
		conditions, err := decodeConditions(encoded)
		if err != nil {
			return nil, err
		}
		var resource attribute.Identifier
		copy(resource[:], resourceRaw)
		out = append(out, policy.Rule{
			ID:         id,
			Resource:   resource,
			Action:     policy.Action(action),
			Conditions: conditions,
			Enabled:    enabled != 0,
		})
	}
	return out, rows.Err()
}

func (c *CatalogStore) AppendIndex(ctx context.Context, resource attribute.Identifier, action policy.Action, id policy.ID) error {
	return c.store.withCrossProcessLock(func() error {
		_, err := c.store.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO rule_index (resource, action, rule_id) VALUES (?, ?, ?)`,
			resource[:], action, id)
		if err != nil {
			return fmt.Errorf("sqlite: append index: %w", err)
		}
		return nil
	})
}

func (c *CatalogStore) RemoveFromIndex(ctx context.Context, resource attribute.Identifier, action policy.Action, id policy.ID) error {
	return c.store.withCrossProcessLock(func() error {
		_, err := c.store.db.ExecContext(ctx,
			`DELETE FROM rule_index WHERE resource = ? AND action = ? AND rule_id = ?`,
			resource[:], action, id)
		if err != nil {
			return fmt.Errorf("sqlite: remove from index: %w", err)
		}
		return nil
	})
}

func (c *CatalogStore) Index(ctx context.Context, resource attribute.Identifier, action policy.Action) ([]policy.ID, error) {
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT rule_id FROM rule_index WHERE resource = ? AND action = ?`, resource[:], action)
	if err != nil {
		return nil, fmt.Errorf("sqlite: index: %w", err)
	}
	defer rows.Close()

	var ids []policy.ID
	for rows.Next() {
		var id policy.ID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan index row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeConditions renders a rule's Conditions as the fixed-width binary
// layout implied by Condition's own doc comment ("wire-compatible wide
// record"): one record per condition, each
//
//	LeftSource(1) LeftKey(32) Op(1) RightSource(1) RightKey(32)
//	Value(32) NumValuePresent(1) NumValue(32) SetCount(1) SetValues(32*SetCount)
func encodeConditions(conditions []policy.Condition) ([]byte, error) {
	var buf bytes.Buffer
	for _, cond := range conditions {
		buf.WriteByte(byte(cond.LeftSource))
		buf.Write(cond.LeftKey[:])
		buf.WriteByte(byte(cond.Op))
		buf.WriteByte(byte(cond.RightSource))
		buf.Write(cond.RightKey[:])
		buf.Write(cond.Value[:])
		if cond.NumValue != nil {
			buf.WriteByte(1)
			numBytes := cond.NumValue.Bytes32()
			buf.Write(numBytes[:])
		} else {
			buf.WriteByte(0)
			buf.Write(make([]byte, 32))
		}
		if len(cond.SetValues) > 255 {
			return nil, fmt.Errorf("sqlite: condition set too large to encode: %d", len(cond.SetValues))
		}
		buf.WriteByte(byte(len(cond.SetValues)))
		for _, v := range cond.SetValues {
			buf.Write(v[:])
		}
	}
	return buf.Bytes(), nil
}

const conditionFixedWidth = 1 + 32 + 1 + 1 + 32 + 32 + 1 + 32 + 1

func decodeConditions(data []byte) ([]policy.Condition, error) {
	var out []policy.Condition
	for len(data) > 0 {
		if len(data) < conditionFixedWidth {
			return nil, fmt.Errorf("sqlite: truncated condition record")
		}
		var cond policy.Condition
		cond.LeftSource = policy.OperandSource(data[0])
		copy(cond.LeftKey[:], data[1:33])
		cond.Op = policy.Operator(data[33])
		cond.RightSource = policy.OperandSource(data[34])
		copy(cond.RightKey[:], data[35:67])
		copy(cond.Value[:], data[67:99])
		hasNum := data[99]
		var numRaw [32]byte
		copy(numRaw[:], data[100:132])
		if hasNum != 0 {
			cond.NumValue = new(uint256.Int).SetBytes32(numRaw[:])
		}
		setCount := int(data[132])
		data = data[conditionFixedWidth:]

		setWidth := setCount * attribute.ValueSize
		if len(data) < setWidth {
			return nil, fmt.Errorf("sqlite: truncated condition set values")
		}
		if setCount > 0 {
			cond.SetValues = make([]attribute.Value, setCount)
			for i := 0; i < setCount; i++ {
				copy(cond.SetValues[i][:], data[i*attribute.ValueSize:(i+1)*attribute.ValueSize])
			}
		}
		data = data[setWidth:]

		out = append(out, cond)
	}
	return out, nil
}
