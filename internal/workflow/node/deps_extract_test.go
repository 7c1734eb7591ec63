package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDependenciesJavaScript(t *testing.T) {
	content := `import React, { useState } from 'react';
import { Button } from '@mui/material/Button';
import styles from './UserCard.module.css';
import '../styles/global.css';
export { formatDate } from 'date-fns';
const axios = require('axios');
`

	deps := ExtractDependencies(content, "typescript")
	assert.Equal(t, []string{"@mui/material", "axios", "date-fns", "react"}, deps)
}

func TestExtractDependenciesPython(t *testing.T) {
	content := `import os
import requests
from fastapi.responses import JSONResponse
from .helpers import parse
`

	deps := ExtractDependencies(content, "python")
	assert.Equal(t, []string{"fastapi", "os", "requests"}, deps)
}

func TestExtractDependenciesGo(t *testing.T) {
	content := `package store

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

import "golang.org/x/sync/errgroup"
`

	deps := ExtractDependencies(content, "go")
	assert.Equal(t, []string{"github.com/redis/go-redis/v9", "golang.org/x/sync/errgroup"}, deps)
}

func TestExtractDependenciesNone(t *testing.T) {
	assert.Nil(t, ExtractDependencies("const x = 1;\n", "javascript"))
	assert.Nil(t, ExtractDependencies("import helper from './local';\n", "javascript"))
}
