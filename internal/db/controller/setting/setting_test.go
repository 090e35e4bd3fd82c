package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bapti-church/bapti-web/internal/db/dbtest"
	"github.com/bapti-church/bapti-web/internal/db/models"
)

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, s := range settings {
		err := db.Create(&s).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := dbtest.Open(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: "site",
			seedData: []models.Setting{
				{Name: "site", Value: []byte(`{"defaultLanguage":"en"}`)},
			},
			expectedValue: []byte(`{"defaultLanguage":"en"}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clean database for each test
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			s, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.settingName, s.Name)
				assert.Equal(t, tc.expectedValue, s.Value)
			}
		})
	}
}

func TestGetAll(t *testing.T) {
	db := dbtest.Open(t)

	_, err := GetAll(nil)
	require.ErrorIs(t, err, ErrDBNil)

	all, err := GetAll(db)
	require.NoError(t, err)
	assert.Empty(t, all)

	seedSettings(t, db, []models.Setting{
		{Name: "zeta", Value: []byte("1")},
		{Name: "alpha", Value: []byte("2")},
	})

	all, err = GetAll(db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)
}

func TestSet(t *testing.T) {
	db := dbtest.Open(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		value         []byte
		expectedError error
	}{
		{name: "nil database", settingName: "x", value: []byte("1"), expectedError: ErrDBNil},
		{name: "empty name", dbParam: db, value: []byte("1"), expectedError: ErrSettingNameEmpty},
		{name: "not json", dbParam: db, settingName: "x", value: []byte("{nope"), expectedError: ErrSettingValueInvalid},
		{name: "create", dbParam: db, settingName: "x", value: []byte(`"first"`)},
		{name: "replace", dbParam: db, settingName: "x", value: []byte(`"second"`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Set(tc.dbParam, tc.settingName, tc.value, "dev-uid")

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.value, s.Value)
			assert.Equal(t, "dev-uid", s.UpdatedBy)
		})
	}

	all, err := GetAll(db)
	require.NoError(t, err)
	assert.Len(t, all, 1, "set is an upsert")
}

func TestDelete(t *testing.T) {
	db := dbtest.Open(t)

	require.ErrorIs(t, Delete(nil, "x"), ErrDBNil)
	require.ErrorIs(t, Delete(db, ""), ErrSettingNameEmpty)
	require.ErrorIs(t, Delete(db, "x"), ErrSettingNotFound)

	seedSettings(t, db, []models.Setting{{Name: "x", Value: []byte("1")}})
	require.NoError(t, Delete(db, "x"))

	_, err := Get(db, "x")
	require.ErrorIs(t, err, ErrSettingNotFound)
}

func TestLoadSaveSite(t *testing.T) {
	db := dbtest.Open(t)

	site, err := LoadSite(db)
	require.NoError(t, err)
	assert.Equal(t, DefaultSite(), site)

	want := Site{DefaultLanguage: "en", ContactEmail: "office@bapti.org", Maintenance: true}
	require.NoError(t, Save(db, SiteKey, want, "dev-uid"))

	site, err = LoadSite(db)
	require.NoError(t, err)
	assert.Equal(t, want, site)

	require.NoError(t, Save(db, SiteKey, map[string]any{"maintenance": false}, "dev-uid"))

	// fields missing from the stored document keep their defaults
	site, err = LoadSite(db)
	require.NoError(t, err)
	assert.Equal(t, Site{DefaultLanguage: "hu"}, site)
}
